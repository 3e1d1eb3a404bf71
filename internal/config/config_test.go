package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/darkhollow/internal/engine"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "data/darkhollow.db", cfg.DBPath)
	assert.Equal(t, 2*time.Second, cfg.Tick)
	assert.Equal(t, uint64(15), cfg.EventEvery)
	assert.Equal(t, uint64(30), cfg.SaveEvery)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DARKHOLLOW_PORT", "9000")
	t.Setenv("DARKHOLLOW_TICK", "500ms")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Tick)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DARKHOLLOW_PORT", "not-an-int")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")

	t.Setenv("DARKHOLLOW_PORT", "70000")
	_, err = Load()
	assert.Error(t, err)
}

func TestEmbeddedVariantsMatchEngine(t *testing.T) {
	got, err := LoadVariants("")
	require.NoError(t, err)
	assert.Equal(t, engine.BuiltinVariants(), got)
}

func TestVariantOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
variants:
  - name: classic
    roles: [idle, gatherers]
    log_limit: 10
  - name: hermit
    roles: [idle]
`), 0o644))

	got, err := LoadVariants(path)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, []engine.Role{engine.RoleIdle, engine.RoleGatherer}, got["classic"].Roles)
	assert.Equal(t, 10, got["classic"].LogLimit)
	assert.Contains(t, got, "hermit")
	assert.True(t, got["homestead"].Farm)
}

func TestVariantFileErrors(t *testing.T) {
	_, err := LoadVariants(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variants:\n  - name: x\n    roles: [farmers]\n"), 0o644))
	_, err = LoadVariants(path)
	assert.Error(t, err)
}

func TestLoadKeeper(t *testing.T) {
	cfg, err := LoadKeeper()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Interval)
	seed, err := cfg.SeedValue()
	require.NoError(t, err)
	assert.Nil(t, seed)

	t.Setenv("KEEPER_SEED", "42")
	t.Setenv("KEEPER_INTERVAL", "250ms")
	cfg, err = LoadKeeper()
	require.NoError(t, err)
	seed, err = cfg.SeedValue()
	require.NoError(t, err)
	require.NotNil(t, seed)
	assert.Equal(t, int64(42), *seed)

	t.Setenv("KEEPER_SEED", "forty-two")
	cfg, err = LoadKeeper()
	require.NoError(t, err)
	_, err = cfg.SeedValue()
	assert.Error(t, err)
}
