package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "user_1", "svix_signature", "v1,abc", "Email", "a@b.c", "dangling"})

	assert.Equal(t, []interface{}{
		"user_id", "user_1",
		"svix_signature", "[REDACTED]",
		"Email", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production"} {
		l, err := New(mode)
		assert.NoError(t, err, mode)
		l.With("service", "test").Debug("hello", "k", 1)
	}
}
