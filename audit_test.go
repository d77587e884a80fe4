package storegate

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingSink collects events; Block lets a test hold the dispatcher's
// delivery goroutine to force a full buffer.
type recordingSink struct {
	mu     sync.Mutex
	events []AuditEvent
	block  chan struct{}
}

func (s *recordingSink) Emit(_ context.Context, event AuditEvent) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Events() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)

	for i, typ := range []string{AuditLoginFailed, AuditLoginFailed, AuditLoginSuccess} {
		d.Emit(context.Background(), AuditEvent{
			Timestamp: time.Now(),
			EventType: typ,
			Email:     "a@example.com",
			Success:   i == 2,
		})
	}
	d.Close()

	events := sink.Events()
	if len(events) != 3 {
		t.Fatalf("delivered %d events, want 3", len(events))
	}
	want := []string{AuditLoginFailed, AuditLoginFailed, AuditLoginSuccess}
	for i, event := range events {
		if event.EventType != want[i] {
			t.Fatalf("event %d = %q, want %q", i, event.EventType, want[i])
		}
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event occupies the delivery goroutine, one fills the buffer,
	// everything after that must be dropped, not block.
	for i := 0; i < 6; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditLoginFailed})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected saturated buffer to drop events")
	}

	close(sink.block)
	d.Close()
}

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &recordingSink{})
	if d != nil {
		t.Fatal("disabled config must produce a nil dispatcher")
	}

	// Nil dispatcher methods are safe no-ops.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports drops")
	}
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, &recordingSink{})
	d.Close()
	d.Close()

	// Emit after close is a no-op rather than a panic on a closed channel.
	d.Emit(context.Background(), AuditEvent{EventType: AuditLogout})
}

func TestDispatcherNilSinkDefaultsToNoOp(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, nil)
	d.Emit(context.Background(), AuditEvent{EventType: AuditLoginSuccess})
	d.Close()
}
