package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a"},
		{"alice", "a****"},
		{"user@example.com", "u***@*******.com"},
		{"zoë", "z**"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskUsername(tt.in))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("otp_secret_one=123456"))
	assert.True(t, SanitizeQueryString("Username=alice"))
	assert.False(t, SanitizeQueryString("format=png"))
	assert.False(t, SanitizeQueryString(""))
}

func TestRedactedAttr(t *testing.T) {
	assert.Equal(t, "[REDACTED]", RedactedAttr("k", "v", "production").Value.String())
	assert.Equal(t, "v", RedactedAttr("k", "v", "development").Value.String())
}

func TestAuditLogger_LogSignAttempt(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogSignAttempt(context.Background(), SignAuditEvent{
		AttemptID:     "attempt-1",
		Username:      "alice",
		RequestID:     "r1",
		FactorsValid:  0,
		FailureReason: "invalid_otp",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "sign", entry["audit_type"])
	assert.Equal(t, "a****", entry["username"])
	assert.Equal(t, "invalid_otp", entry["failure_reason"])
	assert.Equal(t, false, entry["success"])
}

func TestAuditLogger_LogRegistration(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogRegistration(context.Background(), "bob", "203.0.113.7", true, "")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "b**", entry["username"])
	assert.Equal(t, "203.0.113.7", entry["ip_address"])
	assert.NotContains(t, entry, "failure_reason")
}
