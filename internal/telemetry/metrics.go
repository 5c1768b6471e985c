package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Outcome labels for login and rotation counters.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid_credentials"
	OutcomeLocked        = "locked"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeInternalError = "internal_error"
)

// Metrics holds the auth counters. The zero value is not usable; use NewMetrics or NopMetrics.
type Metrics struct {
	loginAttempts metric.Int64Counter
	lockouts      metric.Int64Counter
	rotations     metric.Int64Counter
	auditFailures metric.Int64Counter
}

// NewMetrics registers the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.loginAttempts, err = meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by outcome.")); err != nil {
		return nil, err
	}
	if m.lockouts, err = meter.Int64Counter("auth.lockouts",
		metric.WithDescription("Accounts locked after repeated failed logins.")); err != nil {
		return nil, err
	}
	if m.rotations, err = meter.Int64Counter("auth.refresh.rotations",
		metric.WithDescription("Refresh token rotations by outcome.")); err != nil {
		return nil, err
	}
	if m.auditFailures, err = meter.Int64Counter("auth.audit.failures",
		metric.WithDescription("Access log entries that could not be written.")); err != nil {
		return nil, err
	}
	return m, nil
}

// NopMetrics returns Metrics backed by a no-op meter.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}

func (m *Metrics) LoginAttempt(ctx context.Context, outcome string) {
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) Lockout(ctx context.Context) {
	m.lockouts.Add(ctx, 1)
}

func (m *Metrics) Rotation(ctx context.Context, outcome string) {
	m.rotations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) AuditFailure(ctx context.Context) {
	m.auditFailures.Add(ctx, 1)
}
