package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"credential-lifecycle/internal/logging"
)

// LoggingUnary returns a unary server interceptor that logs each completed RPC with its
// status code and duration. skipMethods are not logged (e.g. health checks).
func LoggingUnary(log *zap.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			logging.ClientIP(ClientIP(ctx)),
		}
		if userID, ok := GetUserID(ctx); ok {
			fields = append(fields, logging.UserID(userID))
		}
		switch code {
		case codes.OK:
			log.Info("rpc completed", fields...)
		case codes.Internal, codes.Unknown:
			log.Error("rpc completed", fields...)
		default:
			log.Warn("rpc completed", fields...)
		}
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that turns a handler panic into an
// Internal status instead of crashing the server.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.String("method", info.FullMethod), zap.Any("panic", rec))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
