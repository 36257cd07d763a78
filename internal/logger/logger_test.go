package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRedactsSecretKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{"room_id", "r1", "Token", "abc", "email", "a@b.c"})

	assert.Equal(t, []interface{}{"room_id", "r1", "Token", "[REDACTED]", "email", "[REDACTED]"}, out)
}

func TestSanitizeKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "u1", "orphan"})

	assert.Equal(t, []interface{}{"user_id", "u1", "orphan"}, out)
}

func TestNewDevelopmentLogger(t *testing.T) {
	log, err := New("development")
	assert.NoError(t, err)
	log.With("component", "test").Info("hello", "k", "v")
}
