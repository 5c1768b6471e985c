package interceptors

import (
	"context"

	userdomain "credential-lifecycle/internal/user/domain"
)

type contextKey struct{ name string }

var (
	userIDKey    = contextKey{"user_id"}
	tenantIDKey  = contextKey{"tenant_id"}
	sessionIDKey = contextKey{"session_id"}
	userKey      = contextKey{"user"}
)

// WithIdentity returns a context with user_id, tenant_id, and session_id set.
// Handlers can read these via GetUserID, GetTenantID, GetSessionID.
func WithIdentity(ctx context.Context, userID, tenantID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// WithUser stores the authenticated user and its identity ids.
func WithUser(ctx context.Context, u *userdomain.User, sessionID string) context.Context {
	ctx = WithIdentity(ctx, u.ID, u.TenantID, sessionID)
	return context.WithValue(ctx, userKey, u)
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetTenantID returns the tenant_id from context and true if set; otherwise "", false.
func GetTenantID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tenantIDKey).(string)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}

// GetUser returns the user resolved by AuthUnary, or nil.
func GetUser(ctx context.Context) *userdomain.User {
	u, _ := ctx.Value(userKey).(*userdomain.User)
	return u
}
