package interceptors

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"credential-lifecycle/internal/autherr"
	sessiondomain "credential-lifecycle/internal/session/domain"
	userdomain "credential-lifecycle/internal/user/domain"
)

const bearerPrefix = "bearer "

// Authenticator resolves a bearer access token to a live session and its active user.
type Authenticator interface {
	CurrentSession(ctx context.Context, accessToken string) (*userdomain.User, *sessiondomain.Session, error)
}

// AuthUnary returns a unary server interceptor that resolves the Bearer (access) token from
// gRPC metadata through auth and sets the user and session in context for protected RPCs.
// A signed token is not enough: the session behind it must still be live.
// publicMethods is the set of full method names that do not require a Bearer token
// (e.g. Register, Login, Refresh, Logout and health checks). On public methods a bad token is ignored.
func AuthUnary(auth Authenticator, publicMethods map[string]bool, log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := extractBearer(ctx)
		public := publicMethods[info.FullMethod]

		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		user, sess, err := auth.CurrentSession(ctx, token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			if !autherr.IsAuthentication(err) {
				log.Error("resolve bearer token", zap.String("method", info.FullMethod), zap.Error(err))
			}
			return nil, ToStatus(err)
		}

		ctx = WithUser(ctx, user, sess.ID)
		return handler(ctx, req)
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
