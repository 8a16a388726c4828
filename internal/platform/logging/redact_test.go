package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapture(t *testing.T) (*slog.Logger, func() map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil), "salt"))
	return logger, func() map[string]any {
		var out map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		buf.Reset()
		return out
	}
}

func TestRedactingHandler(t *testing.T) {
	logger, read := newCapture(t)

	logger.Info("login",
		slog.String("access_token", "abc"),
		slog.String("password", "hunter22"),
		slog.String("Authorization", "Bearer xyz"),
		slog.String("user_id", "0b6f0f4e-7a3c-4bb1-9a3e-3b3c1d6f2a10"),
		slog.String("email", "grower@farm.example"),
		slog.String("note", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"),
		slog.String("path", "/auth/login"),
	)
	out := read()

	assert.Equal(t, redacted, out["access_token"])
	assert.Equal(t, redacted, out["password"])
	assert.Equal(t, redacted, out["Authorization"])
	assert.Regexp(t, `^hash:[0-9a-f]{12}$`, out["user_id"])
	assert.Equal(t, "g***@farm.example", out["email"])
	assert.Equal(t, redacted, out["note"])
	assert.Equal(t, "/auth/login", out["path"])
}

func TestRedactingHandler_WithAttrsAndGroups(t *testing.T) {
	logger, read := newCapture(t)

	logger.With(slog.String("session_id", "s-1")).Info("refresh",
		slog.Group("baas", slog.String("refresh_token", "r"), slog.Int("status", 200)),
	)
	out := read()

	assert.Regexp(t, `^hash:`, out["session_id"])
	group, ok := out["baas"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, redacted, group["refresh_token"])
	assert.EqualValues(t, 200, group["status"])
}

func TestHashValue_Stable(t *testing.T) {
	assert.Equal(t, hashValue("s", "user"), hashValue("s", "user"))
	assert.NotEqual(t, hashValue("s", "user"), hashValue("t", "user"))
	assert.Empty(t, hashValue("s", ""))
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, "info", lvl.String())

	lvl, err = parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "debug", lvl.String())

	_, err = parseLevel("loud")
	assert.Error(t, err)
}
