package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv(EnvToken, "")
	return NewStore(filepath.Join(t.TempDir(), "home"))
}

func TestStoreRoundTrip(t *testing.T) {
	s := newStore(t)

	ti, err := s.Get()
	require.NoError(t, err)
	assert.Nil(t, ti, "no credentials yet")

	require.NoError(t, s.Set("Bearer abc123", nil))

	fi, err := os.Stat(filepath.Join(s.Dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	ti, err = s.Get()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc123", ti.Token)
	assert.Equal(t, "file", ti.Source)
	assert.Nil(t, ti.ExpiresAt)

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete(), "second delete is a no-op")
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestEnvOverride(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set("from-file", nil))
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
}

func TestSetRejectsEmpty(t *testing.T) {
	s := newStore(t)
	assert.Error(t, s.Set("   ", nil))
}

func TestClaimsAndExpiry(t *testing.T) {
	payload := `{"sub":"idil","exp":1893456000}`
	token := "eyJhbGciOiJub25lIn0." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"

	got, ok := Claims(token)
	require.True(t, ok)
	assert.Equal(t, payload, got)

	_, ok = Claims("opaque-token")
	assert.False(t, ok)

	s := newStore(t)
	require.NoError(t, s.Set(token, nil))
	ti, err := s.Get()
	require.NoError(t, err)
	require.NotNil(t, ti.ExpiresAt)
	assert.Equal(t, int64(1893456000), ti.ExpiresAt.Unix())
}
