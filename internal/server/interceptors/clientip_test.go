package interceptors

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

func TestClientIP(t *testing.T) {
	peerCtx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 5555},
	})
	testCases := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"no metadata or peer", context.Background(), "unknown"},
		{"forwarded first hop", metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-forwarded-for", "203.0.113.5, 10.0.0.1")), "203.0.113.5"},
		{"real ip", metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-real-ip", " 198.51.100.7 ")), "198.51.100.7"},
		{"forwarded wins over real ip", metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-forwarded-for", "203.0.113.5", "x-real-ip", "198.51.100.7")), "203.0.113.5"},
		{"peer", peerCtx, "192.0.2.10"},
		{"blank header falls back to peer", metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-forwarded-for", "  ")), "192.0.2.10"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientIP(tc.ctx); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(context.Background()); got != "" {
		t.Errorf("UserAgent without metadata = %q", got)
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("user-agent", "cli/1.0"))
	if got := UserAgent(ctx); got != "cli/1.0" {
		t.Errorf("UserAgent = %q", got)
	}
}
