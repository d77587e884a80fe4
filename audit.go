package storegate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Audit event types emitted by the engine.
const (
	AuditLoginSuccess     = "login_success"
	AuditLoginFailed      = "login_failed"
	AuditLoginRateLimited = "login_rate_limited"
	AuditLogout           = "logout"
	AuditUserCreated      = "user_created"
	AuditUserUpdated      = "user_updated"
	AuditUserDeactivated  = "user_deactivated"
)

// AuditEvent is one security-relevant occurrence. Email identifies the
// subject account when known; failed lookups still record the attempted
// identifier so brute-force patterns are visible.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Email     string            `json:"email,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives events from the engine's async dispatcher. Emit must
// not block indefinitely; slow sinks cause drops, not backpressure on login.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards all events.
type NoOpSink struct{}

// Emit implements [AuditSink].
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ZerologSink writes events as structured log lines.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink wraps a zerolog logger as an [AuditSink].
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Emit implements [AuditSink].
func (s *ZerologSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil {
		return
	}
	evt := s.logger.Info()
	if !event.Success {
		evt = s.logger.Warn()
	}
	evt = evt.
		Time("audit_time", event.Timestamp).
		Str("event", event.EventType).
		Bool("success", event.Success)
	if event.Email != "" {
		evt = evt.Str("email", event.Email)
	}
	if event.IP != "" {
		evt = evt.Str("ip", event.IP)
	}
	if event.Error != "" {
		evt = evt.Str("error", event.Error)
	}
	for k, v := range event.Metadata {
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}
