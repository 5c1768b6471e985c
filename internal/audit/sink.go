// Package audit records authentication attempts in the append-only access log and mirrors
// them to the telemetry pipeline.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"credential-lifecycle/internal/audit/domain"
	auditrepo "credential-lifecycle/internal/audit/repository"
	"credential-lifecycle/internal/telemetry"
)

// Column widths of access_log.
const (
	maxEmailLen  = 160
	maxIPLen     = 45
	maxDetailLen = 255
)

// Sink writes access log entries synchronously. The telemetry mirror is best-effort and
// never delays or fails Record.
type Sink struct {
	repo    auditrepo.Repository
	emitter telemetry.EventEmitter
	log     *zap.Logger
	now     func() time.Time
}

// NewSink returns a Sink persisting to repo. emitter and log may be nil.
func NewSink(repo auditrepo.Repository, emitter telemetry.EventEmitter, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{repo: repo, emitter: emitter, log: log, now: time.Now}
}

// Record appends entry. ID and CreatedAt are filled in when empty. Over-long fields are
// truncated to the column widths.
func (s *Sink) Record(ctx context.Context, entry domain.AccessLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	entry.AttemptedEmail = clip(entry.AttemptedEmail, maxEmailLen)
	entry.IP = clip(entry.IP, maxIPLen)
	entry.Detail = clip(entry.Detail, maxDetailLen)
	if err := s.repo.Create(ctx, &entry); err != nil {
		return err
	}
	telemetry.EmitAsync(s.emitter, telemetry.Event{
		Type:      eventType(entry.Detail),
		UserID:    entry.UserID,
		IP:        entry.IP,
		Detail:    entry.Detail,
		Success:   entry.Success,
		CreatedAt: entry.CreatedAt,
	}, s.log)
	return nil
}

// eventType is the detail up to the first colon ("login: account locked" -> "login").
func eventType(detail string) string {
	if i := strings.IndexByte(detail, ':'); i >= 0 {
		return detail[:i]
	}
	return detail
}

func clip(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return strings.ToValidUTF8(v[:n], "")
}
