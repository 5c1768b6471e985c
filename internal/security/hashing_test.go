package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"credential-lifecycle/internal/autherr"
)

func TestCodec_HashAndVerify(t *testing.T) {
	c := NewCodec(bcrypt.MinCost, 2)
	ctx := context.Background()
	testCases := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "secret123"},
		{"bcrypt limit", strings.Repeat("a", 72)},
		{"past bcrypt limit", strings.Repeat("b", 73)},
		{"unicode", "contraseña-ñandú-東京"},
		{"10k bytes", strings.Repeat("x", 10000)},
		{"12k bytes", strings.Repeat("yz", 6000)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := c.Hash(ctx, tc.secret)
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			ok, err := c.Verify(ctx, tc.secret, hash)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if !ok {
				t.Fatal("Verify(s, Hash(s)) should be true")
			}
			ok, err = c.Verify(ctx, tc.secret+"x", hash)
			if err != nil {
				t.Fatalf("Verify suffixed: %v", err)
			}
			if ok {
				t.Fatal(`Verify(s+"x", Hash(s)) should be false`)
			}
		})
	}
}

func TestCodec_LongSecretsDifferBeyond72Bytes(t *testing.T) {
	c := NewCodec(bcrypt.MinCost, 1)
	ctx := context.Background()
	base := strings.Repeat("p", 100)
	hash, err := c.Hash(ctx, base+"1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	ok, err := c.Verify(ctx, base+"2", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("secrets differing after byte 72 must not verify")
	}
}

func TestCodec_VerifyMalformedHash(t *testing.T) {
	c := NewCodec(bcrypt.MinCost, 1)
	for _, stored := range []string{"", "not-a-hash", "$2a$04$short"} {
		ok, err := c.Verify(context.Background(), "secret", stored)
		if ok {
			t.Errorf("Verify against %q returned true", stored)
		}
		var ie *autherr.InternalError
		if !errors.As(err, &ie) {
			t.Errorf("Verify against %q: want InternalError, got %v", stored, err)
		}
	}
}

func TestCodec_CanceledContext(t *testing.T) {
	c := NewCodec(bcrypt.MinCost, 1)
	// Hold the only slot so Acquire must wait on ctx.
	if err := c.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer c.sem.Release(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Hash(ctx, "secret"); err == nil {
		t.Fatal("Hash with canceled context and no free slot should fail")
	}
}

func TestCodec_Cost(t *testing.T) {
	if c := NewCodec(12, 0); c.Cost != 12 {
		t.Errorf("Cost want 12, got %d", c.Cost)
	}
	if c := NewCodec(0, 0); c.Cost != bcrypt.DefaultCost {
		t.Errorf("zero cost should default, got %d", c.Cost)
	}
	if c := NewCodec(1, 0); c.Cost != bcrypt.MinCost {
		t.Errorf("low cost should clamp to MinCost, got %d", c.Cost)
	}
	if c := NewCodec(99, 0); c.Cost != bcrypt.MaxCost {
		t.Errorf("high cost should clamp to MaxCost, got %d", c.Cost)
	}
}
