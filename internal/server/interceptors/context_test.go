package interceptors

import (
	"context"
	"testing"

	userdomain "credential-lifecycle/internal/user/domain"
)

func TestWithIdentity_SetsAllValues(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "tenant-1", "session-1")

	if v, ok := GetUserID(ctx); !ok || v != "user-1" {
		t.Errorf("GetUserID = %q, %v", v, ok)
	}
	if v, ok := GetTenantID(ctx); !ok || v != "tenant-1" {
		t.Errorf("GetTenantID = %q, %v", v, ok)
	}
	if v, ok := GetSessionID(ctx); !ok || v != "session-1" {
		t.Errorf("GetSessionID = %q, %v", v, ok)
	}
	if GetUser(ctx) != nil {
		t.Error("GetUser should be nil without WithUser")
	}
}

func TestGetters_ReturnFalseWhenNotSet(t *testing.T) {
	ctx := context.Background()
	if v, ok := GetUserID(ctx); ok || v != "" {
		t.Errorf("GetUserID = %q, %v", v, ok)
	}
	if v, ok := GetTenantID(ctx); ok || v != "" {
		t.Errorf("GetTenantID = %q, %v", v, ok)
	}
	if v, ok := GetSessionID(ctx); ok || v != "" {
		t.Errorf("GetSessionID = %q, %v", v, ok)
	}
}

func TestWithUser(t *testing.T) {
	u := &userdomain.User{ID: "user-1", TenantID: "tenant-1", Email: "a@example.com"}
	ctx := WithUser(context.Background(), u, "session-1")

	if got := GetUser(ctx); got != u {
		t.Errorf("GetUser = %v, want %v", got, u)
	}
	if v, _ := GetUserID(ctx); v != "user-1" {
		t.Errorf("GetUserID = %q", v)
	}
	if v, _ := GetSessionID(ctx); v != "session-1" {
		t.Errorf("GetSessionID = %q", v)
	}
}
