package telemetry

import (
	"context"
	"time"
)

// Event is an access log entry as mirrored to the telemetry pipeline. It never carries
// secrets or attempted emails.
type Event struct {
	Type      string
	UserID    string
	IP        string
	Detail    string
	Success   bool
	CreatedAt time.Time
}

// EventEmitter emits events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event Event) error
}
