package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--env-file", "testdata-missing.env"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"seed", "facts", "kpis", "window", "token"} {
		assert.Contains(t, out, sub)
	}
}

func TestTokenCommandMintsVerifiableToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-test-secret")

	out, err := run(t, "token", "--subject", "coach", "--ttl", "5m")
	require.NoError(t, err)

	claims, err := middleware.ParseAdminToken(config.AuthConfig{JWTSecret: "cli-test-secret", JWTIssuer: "boxstudio"}, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "coach", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := run(t, "token")
	assert.Error(t, err)
}

func TestWindowCommandRejectsBadBounds(t *testing.T) {
	_, err := run(t, "window", "--start", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --start")

	_, err = run(t, "window", "--start", "2026-03-31T00:00:00Z", "--end", "2026-03-01T00:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be after")
}

func TestParseWindowDefaultsEndToNow(t *testing.T) {
	start, end, err := parseWindow("2026-03-01T00:00:00Z", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.WithinDuration(t, time.Now(), end, time.Minute)
}
