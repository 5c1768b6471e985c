package security

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	// base64(sha256("")) is a well-known constant.
	if got := Normalize(""); got != "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=" {
		t.Errorf("Normalize(\"\") = %q", got)
	}
	for _, s := range []string{"a", strings.Repeat("z", 10000)} {
		if n := len(Normalize(s)); n != 44 {
			t.Errorf("len(Normalize) = %d, want 44", n)
		}
	}
	if Normalize("abc") != Normalize("abc") {
		t.Error("Normalize should be deterministic")
	}
	if Normalize("abc") == Normalize("abd") {
		t.Error("different inputs should normalize differently")
	}
}

func TestNewRefreshSecret(t *testing.T) {
	a, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	b, _ := NewRefreshSecret()
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
	if a == b {
		t.Error("secrets should differ")
	}
	if strings.ContainsAny(a, "+/=") {
		t.Errorf("secret %q should be unpadded base64url", a)
	}
}
