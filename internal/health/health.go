// Package health keeps the standard gRPC health service in step with database reachability.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultInterval is how often Run checks the database.
const DefaultInterval = 10 * time.Second

const pingTimeout = 2 * time.Second

// Pinger checks database connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusSetter receives serving status updates (e.g. *health.Server from grpc/health).
type StatusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// Checker reports SERVING while the database answers pings and NOT_SERVING otherwise.
// A nil Pinger (in-memory repositories) is always SERVING.
type Checker struct {
	pinger   Pinger
	setter   StatusSetter
	services []string
	log      *zap.Logger
	last     healthpb.HealthCheckResponse_ServingStatus
}

// NewChecker returns a Checker that updates the overall status ("") and each named service.
func NewChecker(pinger Pinger, setter StatusSetter, log *zap.Logger, services ...string) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{
		pinger:   pinger,
		setter:   setter,
		services: append([]string{""}, services...),
		log:      log,
	}
}

// Check pings once and publishes the result. It returns the ping error, if any.
func (c *Checker) Check(ctx context.Context) error {
	st := healthpb.HealthCheckResponse_SERVING
	var err error
	if c.pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = c.pinger.PingContext(pctx)
		cancel()
		if err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	if st != c.last {
		if err != nil {
			c.log.Warn("health: database unreachable", zap.Error(err))
		} else if c.last != healthpb.HealthCheckResponse_UNKNOWN {
			c.log.Info("health: database reachable again")
		}
		c.last = st
	}
	for _, svc := range c.services {
		c.setter.SetServingStatus(svc, st)
	}
	return err
}

// Run calls Check every interval until ctx is done. Run is not safe to call concurrently.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	_ = c.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Check(ctx)
		}
	}
}
