package server

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"credential-lifecycle/internal/autherr"
	identityhandler "credential-lifecycle/internal/identity/handler"
	identityservice "credential-lifecycle/internal/identity/service"
	"credential-lifecycle/internal/server/interceptors"
	sessiondomain "credential-lifecycle/internal/session/domain"
	userdomain "credential-lifecycle/internal/user/domain"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Auth is the auth service for Register/Login/Refresh/Logout/Me. If nil, auth RPCs return Unimplemented.
	Auth *identityservice.AuthService
	// Health is the standard health service. If nil, a new one is created that always reports SERVING.
	Health *grpchealth.Server
	// Logger receives request logs. If nil, nothing is logged.
	Logger *zap.Logger
}

// PublicMethods returns the full method names that do not require a bearer token.
func PublicMethods() map[string]bool {
	m := map[string]bool{
		healthpb.Health_Check_FullMethodName: true,
		healthpb.Health_Watch_FullMethodName: true,
	}
	for _, name := range identityhandler.PublicMethods {
		m[identityhandler.FullMethod(name)] = true
	}
	return m
}

// NewGRPCServer returns a gRPC server with tracing, panic recovery, request logging and
// bearer authentication installed, and every service registered.
func NewGRPCServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	var authn interceptors.Authenticator = denyAll{}
	if deps.Auth != nil {
		authn = deps.Auth
	}
	public := PublicMethods()
	quiet := map[string]bool{
		healthpb.Health_Check_FullMethodName: true,
		healthpb.Health_Watch_FullMethodName: true,
	}
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoverUnary(deps.Logger),
			interceptors.LoggingUnary(deps.Logger, quiet),
			interceptors.AuthUnary(authn, public, deps.Logger),
		),
	}, opts...)
	s := grpc.NewServer(opts...)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers all gRPC services with the given server.
//
//   - credlife.auth.v1.AuthService → internal/identity/handler
//   - grpc.health.v1.Health        → grpc/health, driven by internal/health
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	var auth identityhandler.Authenticator
	if deps.Auth != nil {
		auth = deps.Auth
	}
	identityhandler.RegisterAuthServiceServer(s, identityhandler.NewAuthServer(auth))
	hs := deps.Health
	if hs == nil {
		hs = grpchealth.NewServer()
	}
	healthpb.RegisterHealthServer(s, hs)
}

// denyAll rejects every token; used when no authenticator is configured.
type denyAll struct{}

func (denyAll) CurrentSession(context.Context, string) (*userdomain.User, *sessiondomain.Session, error) {
	return nil, nil, autherr.ErrSessionNotActive
}
