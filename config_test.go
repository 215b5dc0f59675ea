package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hailstorm/internal/hail"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, backendBuiltin, cfg.Solver.Backend)
	assert.Equal(t, int64(200000000000000), cfg.Area.Min)
	assert.Equal(t, int64(400000000000000), cfg.Area.Max)
	assert.Equal(t, hail.DefaultArea, hail.Area{Min: cfg.Area.Min, Max: cfg.Area.Max})
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
  "base_url": "http://localhost:8080/",
  "session": "  abc123 ",
  "day": 23,
  "solver": {"backend": "Z3", "z3_path": "/opt/z3", "timeout_seconds": 30},
  "area": {"min": 7, "max": 27}
}`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "abc123", cfg.Session)
	assert.Equal(t, defaultYear, cfg.Year)
	assert.Equal(t, 23, cfg.Day)
	assert.Equal(t, defaultUA, cfg.UserAgent)
	assert.Equal(t, solverConfig{Backend: backendZ3, Z3Path: "/opt/z3", TimeoutSeconds: 30}, cfg.Solver)
	assert.Equal(t, areaConfig{Min: 7, Max: 27}, cfg.Area)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"backend":  `{"solver": {"backend": "cvc5"}}`,
		"day":      `{"day": 26}`,
		"year":     `{"year": 1999}`,
		"area":     `{"area": {"min": 10, "max": 1}}`,
		"timeout":  `{"solver": {"timeout_seconds": -1}}`,
		"not json": `{"day": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			writeFile(t, path, body)
			_, err := loadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := defaultConfig()
	cfg.Session = "deadbeef"
	cfg.CacheDir = "/tmp/aoc"
	cfg.Solver.MaxRounds = 12
	require.NoError(t, saveConfig(path, cfg))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSessionPrefersEnvironment(t *testing.T) {
	cfg := defaultConfig()
	cfg.Session = "stored"

	t.Setenv(envSession, "")
	assert.Equal(t, "stored", cfg.session())

	t.Setenv(envSession, " fromenv ")
	assert.Equal(t, "fromenv", cfg.session())
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(envHome, "")
	assert.Equal(t, "config.json", resolveConfigPath(""))
	assert.Equal(t, "x.json", resolveConfigPath(" x.json "))

	t.Setenv(envHome, "/srv/hail")
	assert.Equal(t, filepath.Join("/srv/hail", "config.json"), resolveConfigPath(""))
}

func TestInputPath(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.CacheDir = dir
	p, err := cfg.inputPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2023", "24.inp"), p)

	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg.CacheDir = ""
	p, err = cfg.inputPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".aoc", "2023", "24.inp"), p)

	cfg.CacheDir = "~/cache"
	p, err = cfg.inputPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cache", "2023", "24.inp"), p)
}
