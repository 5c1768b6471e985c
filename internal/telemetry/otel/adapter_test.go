package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"credential-lifecycle/internal/telemetry"
)

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), telemetry.Event{Type: "login"}); err != nil {
		t.Errorf("noop Emit: %v", err)
	}
}

func TestNewEventEmitter_SDKProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), telemetry.Event{Type: "login", Success: true}); err != nil {
		t.Errorf("Emit: %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func attributes(rec otellog.Record) map[string]otellog.Value {
	attrs := make(map[string]otellog.Value)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	return attrs
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := telemetry.Event{
		Type:      "login",
		UserID:    "user1",
		IP:        "10.0.0.1",
		Detail:    "password login",
		Success:   true,
		CreatedAt: at,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec
	if got := rec.Body().AsString(); got != "password login" {
		t.Errorf("body = %q", got)
	}
	if !rec.Timestamp().Equal(at) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), at)
	}
	if rec.Severity() != otellog.SeverityInfo {
		t.Errorf("severity = %v, want INFO", rec.Severity())
	}
	attrs := attributes(rec)
	want := map[string]string{"event_type": "login", "user_id": "user1", "client_ip": "10.0.0.1"}
	for k, v := range want {
		if attrs[k].AsString() != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k].AsString(), v)
		}
	}
	if !attrs["success"].AsBool() {
		t.Error("success attribute should be true")
	}
}

func TestEmit_FailureWithEmptyFields(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	before := time.Now().UTC()
	if err := em.Emit(context.Background(), telemetry.Event{Type: "login"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec
	if rec.Severity() != otellog.SeverityWarn {
		t.Errorf("severity = %v, want WARN", rec.Severity())
	}
	if !rec.Body().Empty() {
		t.Error("body should be empty without detail")
	}
	if rec.Timestamp().Before(before) {
		t.Errorf("timestamp %v should default to now", rec.Timestamp())
	}
	attrs := attributes(rec)
	for _, k := range []string{"user_id", "client_ip"} {
		if _, ok := attrs[k]; ok {
			t.Errorf("attribute %q should not be set for an empty field", k)
		}
	}
}
