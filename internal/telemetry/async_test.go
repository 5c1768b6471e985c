package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type chanEmitter struct {
	ch  chan Event
	err error
}

func (c *chanEmitter) Emit(ctx context.Context, event Event) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("emit context has no deadline")
	}
	c.ch <- event
	return c.err
}

func TestEmitAsync_Delivers(t *testing.T) {
	em := &chanEmitter{ch: make(chan Event, 1)}
	EmitAsync(em, Event{Type: "login", UserID: "u1"}, zap.NewNop())
	select {
	case got := <-em.ch:
		if got.Type != "login" || got.UserID != "u1" {
			t.Errorf("event = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not emitted")
	}
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	EmitAsync(nil, Event{Type: "login"}, nil)
}

func TestShutdownDrainDuration(t *testing.T) {
	if ShutdownDrainDuration < emitTimeout {
		t.Errorf("ShutdownDrainDuration %v < emitTimeout %v", ShutdownDrainDuration, emitTimeout)
	}
}
