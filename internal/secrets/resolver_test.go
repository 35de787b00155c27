package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

func TestEnvResolver(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "from-env")

	r := &EnvResolver{}
	val, err := r.Get("TEST_SECRET_ENV")
	require.NoError(t, err)
	assert.Equal(t, "from-env", val)
}

func TestEnvResolverMissing(t *testing.T) {
	r := &EnvResolver{}
	_, err := r.Get("TEST_SECRET_UNSET")

	var missing *errors.ErrMissingSecret
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "TEST_SECRET_UNSET", missing.Name)
}

func TestDirResolverReadsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LS_API_KEY"), []byte("file-key\n"), 0o600))

	r := &DirResolver{dir: dir}
	val, err := r.Get("LS_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "file-key", val)
}

func TestDirResolverFallsBackToEnv(t *testing.T) {
	t.Setenv("TEST_SECRET_FALLBACK", "env-value")

	r := &DirResolver{dir: t.TempDir()}
	val, err := r.Get("TEST_SECRET_FALLBACK")
	require.NoError(t, err)
	assert.Equal(t, "env-value", val)
}

func TestDirResolverEmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TEST_SECRET_EMPTY"), []byte("  \n"), 0o600))

	r := &DirResolver{dir: dir}
	_, err := r.Get("TEST_SECRET_EMPTY")

	var missing *errors.ErrMissingSecret
	require.ErrorAs(t, err, &missing)
}

func TestNewPicksResolverFromConfig(t *testing.T) {
	logger := zap.NewNop()

	r := New(config.SecretsConfig{}, logger)
	assert.IsType(t, &EnvResolver{}, r)

	r = New(config.SecretsConfig{Dir: t.TempDir()}, logger)
	assert.IsType(t, &DirResolver{}, r)
}
