package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	identityservice "credential-lifecycle/internal/identity/service"
	"credential-lifecycle/internal/server/interceptors"
)

// ServiceName is the gRPC service name of the auth API.
const ServiceName = "credlife.auth.v1.AuthService"

// FullMethod returns the full gRPC method name for method (e.g. "Login").
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods are the auth RPCs that do not need a bearer token.
var PublicMethods = []string{"Register", "Login", "Refresh", "Logout"}

// Authenticator is the part of the identity service the handler exposes.
type Authenticator interface {
	Register(ctx context.Context, in identityservice.RegisterInput) (*identityservice.RegisterResult, error)
	Login(ctx context.Context, in identityservice.LoginInput) (*identityservice.AuthResult, error)
	Refresh(ctx context.Context, sessionID, refreshToken string) (*identityservice.AuthResult, error)
	Logout(ctx context.Context, sessionID, refreshToken string) error
}

type RegisterRequest struct {
	TenantID    string `json:"tenant_id,omitempty"`
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Password    string `json:"password"`
}

// RegisterResponse is the same for new and already registered emails.
type RegisterResponse struct {
	Accepted bool `json:"accepted"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct{}

// TokenResponse is returned by Login and Refresh.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type MeRequest struct{}

type MeResponse struct {
	UserID      string `json:"user_id"`
	TenantID    string `json:"tenant_id"`
	Email       string `json:"email"`
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	SessionID   string `json:"session_id"`
}

// AuthServiceServer is the server API of the auth service.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
}

// AuthServer implements AuthServiceServer over an Authenticator.
type AuthServer struct {
	auth Authenticator
}

// NewAuthServer returns a new Auth gRPC server. A nil auth makes every RPC return Unimplemented.
func NewAuthServer(auth Authenticator) *AuthServer {
	return &AuthServer{auth: auth}
}

// Register creates an account. The response never says whether the email was already taken.
func (s *AuthServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Register not implemented")
	}
	_, err := s.auth.Register(ctx, identityservice.RegisterInput{
		TenantID:    req.TenantID,
		GivenNames:  req.GivenNames,
		FamilyNames: req.FamilyNames,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		IP:          interceptors.ClientIP(ctx),
	})
	if err != nil {
		return nil, interceptors.ToStatus(err)
	}
	return &RegisterResponse{Accepted: true}, nil
}

// Login authenticates with email and password and starts a new session.
func (s *AuthServer) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Login not implemented")
	}
	res, err := s.auth.Login(ctx, identityservice.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        interceptors.ClientIP(ctx),
		UserAgent: interceptors.UserAgent(ctx),
	})
	if err != nil {
		return nil, interceptors.ToStatus(err)
	}
	return tokenResponse(res), nil
}

// Refresh rotates the refresh token of a session.
func (s *AuthServer) Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
	}
	res, err := s.auth.Refresh(ctx, req.SessionID, req.RefreshToken)
	if err != nil {
		return nil, interceptors.ToStatus(err)
	}
	return tokenResponse(res), nil
}

// Logout ends the session when the refresh token matches. It succeeds in every other case too.
func (s *AuthServer) Logout(ctx context.Context, req *LogoutRequest) (*LogoutResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
	}
	if err := s.auth.Logout(ctx, req.SessionID, req.RefreshToken); err != nil {
		return nil, interceptors.ToStatus(err)
	}
	return &LogoutResponse{}, nil
}

// Me returns the user resolved from the bearer token by the auth interceptor.
func (s *AuthServer) Me(ctx context.Context, _ *MeRequest) (*MeResponse, error) {
	u := interceptors.GetUser(ctx)
	if u == nil {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	sessionID, _ := interceptors.GetSessionID(ctx)
	return &MeResponse{
		UserID:      u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		GivenNames:  u.GivenNames,
		FamilyNames: u.FamilyNames,
		SessionID:   sessionID,
	}, nil
}

func tokenResponse(res *identityservice.AuthResult) *TokenResponse {
	return &TokenResponse{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		TokenType:        "Bearer",
		SessionID:        res.SessionID,
		UserID:           res.UserID,
		ExpiresAt:        res.ExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
	}
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// AuthServiceDesc describes the auth service. Messages are JSON encoded; clients select the
// codec with grpc.CallContentSubtype("json").
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", AuthServiceServer.Register),
		unary("Login", AuthServiceServer.Login),
		unary("Refresh", AuthServiceServer.Refresh),
		unary("Logout", AuthServiceServer.Logout),
		unary("Me", AuthServiceServer.Me),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "credlife/auth/v1",
}

func unary[Req, Resp any](name string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(AuthServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(impl, ctx, req.(*Req))
			})
		},
	}
}
