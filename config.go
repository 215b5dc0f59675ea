package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"hailstorm/internal/hail"
)

// Default configuration values.
const (
	defaultBaseURL = "https://adventofcode.com"
	defaultUA      = "hailstorm (input cache; go net/http)"
	defaultYear    = 2023
	defaultDay     = 24
	defaultBackend = backendBuiltin
)

// Environment variables.
const (
	envSession = "AOC_SESSION"
	envHome    = "HAILSTORM_HOME"
)

// Solver backends selectable in config or with --backend.
const (
	backendBuiltin = "builtin"
	backendZ3      = "z3"
	backendLinalg  = "linalg"
)

// solverConfig selects and tunes the solver backend.
type solverConfig struct {
	Backend        string `json:"backend,omitempty"`
	Z3Path         string `json:"z3_path,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	MaxRounds      int    `json:"max_rounds,omitempty"`
}

// areaConfig is the test area for counting path crossings.
type areaConfig struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// appConfig holds the application configuration.
type appConfig struct {
	BaseURL   string       `json:"base_url"`
	Session   string       `json:"session"`
	UserAgent string       `json:"user_agent"`
	Year      int          `json:"year"`
	Day       int          `json:"day"`
	CacheDir  string       `json:"cache_dir,omitempty"`
	Solver    solverConfig `json:"solver,omitempty"`
	Area      areaConfig   `json:"area,omitempty"`
}

func defaultConfig() appConfig {
	return appConfig{
		BaseURL:   defaultBaseURL,
		UserAgent: defaultUA,
		Year:      defaultYear,
		Day:       defaultDay,
		Solver: solverConfig{
			Backend: defaultBackend,
		},
		Area: areaConfig{
			Min: hail.DefaultArea.Min,
			Max: hail.DefaultArea.Max,
		},
	}
}

// resolveConfigPath picks the config file: the flag, then $HAILSTORM_HOME,
// then ./config.json.
func resolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if home := strings.TrimSpace(os.Getenv(envHome)); home != "" {
		return filepath.Join(home, "config.json")
	}
	return "config.json"
}

// loadConfig loads configuration from the specified path. A missing file
// yields the defaults.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return appConfig{}, fmt.Errorf("stat config: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return appConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return appConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Session = strings.TrimSpace(cfg.Session)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUA
	}
	cfg.Solver.Backend = strings.ToLower(strings.TrimSpace(cfg.Solver.Backend))
	if cfg.Solver.Backend == "" {
		cfg.Solver.Backend = defaultBackend
	}
	if err := cfg.validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	if c.Year < 2015 {
		return fmt.Errorf("invalid year: %d", c.Year)
	}
	if c.Day < 1 || c.Day > 25 {
		return fmt.Errorf("invalid day: %d", c.Day)
	}
	if err := validateBackend(c.Solver.Backend); err != nil {
		return err
	}
	if c.Solver.TimeoutSeconds < 0 {
		return errors.New("solver.timeout_seconds must be >= 0")
	}
	if c.Area.Min > c.Area.Max {
		return fmt.Errorf("area.min (%d) is greater than area.max (%d)", c.Area.Min, c.Area.Max)
	}
	return nil
}

func validateBackend(name string) error {
	switch name {
	case backendBuiltin, backendZ3, backendLinalg:
		return nil
	default:
		return fmt.Errorf("unknown solver backend %q (want %s, %s or %s)", name, backendBuiltin, backendZ3, backendLinalg)
	}
}

// session returns the session token, preferring $AOC_SESSION.
func (c appConfig) session() string {
	if s := strings.TrimSpace(os.Getenv(envSession)); s != "" {
		return s
	}
	return c.Session
}

// inputPath is the cache file for the configured puzzle:
// <cache_dir>/<year>/<day>.inp, cache_dir defaulting to $HOME/.aoc.
func (c appConfig) inputPath() (string, error) {
	dir := c.CacheDir
	if dir == "" || dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		switch {
		case dir == "":
			dir = filepath.Join(home, ".aoc")
		default:
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return filepath.Join(dir, strconv.Itoa(c.Year), strconv.Itoa(c.Day)+".inp"), nil
}

// saveConfig writes configuration to the specified path.
func saveConfig(path string, cfg appConfig) error {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUA
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
