package logger

import (
	"context"
	"log/slog"
	"time"
)

// SignAuditEvent records the outcome of one sign attempt.
// OTP codes and secrets are never part of an event.
type SignAuditEvent struct {
	AttemptID        string
	Username         string
	RequestID        string
	IPAddress        string
	FactorsPresented int
	FactorsValid     int
	Success          bool
	FailureReason    string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogSignAttempt logs sign attempts with the masked username
func (al *AuditLogger) LogSignAttempt(ctx context.Context, event SignAuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "sign"),
		slog.String("event_type", "sign_attempt"),
		slog.Bool("success", event.Success),
		slog.Int("factors_presented", event.FactorsPresented),
		slog.Int("factors_valid", event.FactorsValid),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AttemptID != "" {
		attrs = append(attrs, slog.String("attempt_id", event.AttemptID))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", MaskUsername(event.Username)))
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "audit", attrs...)
	}
}

// LogRegistration logs registration events
func (al *AuditLogger) LogRegistration(ctx context.Context, username, ipAddress string, success bool, reason string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "registration"),
		slog.String("event_type", "register"),
		slog.Bool("success", success),
		slog.String("username", MaskUsername(username)),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}
	if reason != "" {
		attrs = append(attrs, slog.String("failure_reason", reason))
	}

	if success {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "audit", attrs...)
	}
}
