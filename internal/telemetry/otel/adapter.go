package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"credential-lifecycle/internal/telemetry"
)

// instrumentationName scopes the access log records.
const instrumentationName = "credential-lifecycle/audit"

// recordEmitter is the part of otellog.Logger the emitter needs.
type recordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(instrumentationName))
}

// NewEventEmitterWithLogger returns an EventEmitter writing to logger.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, telemetry.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to an OTel log record and emits it. Failed attempts are WARN, the
// rest INFO. Empty fields are not added as attributes.
func (e *otelEmitter) Emit(ctx context.Context, event telemetry.Event) error {
	rec := otellog.Record{}
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetObservedTimestamp(time.Now().UTC())
	if event.Success {
		rec.SetSeverity(otellog.SeverityInfo)
		rec.SetSeverityText("INFO")
	} else {
		rec.SetSeverity(otellog.SeverityWarn)
		rec.SetSeverityText("WARN")
	}
	if event.Detail != "" {
		rec.SetBody(otellog.StringValue(event.Detail))
	}
	rec.AddAttributes(otellog.Bool("success", event.Success))
	for _, kv := range []struct{ key, val string }{
		{"event_type", event.Type},
		{"user_id", event.UserID},
		{"client_ip", event.IP},
	} {
		if kv.val != "" {
			rec.AddAttributes(otellog.String(kv.key, kv.val))
		}
	}
	e.logger.Emit(ctx, rec)
	return nil
}
