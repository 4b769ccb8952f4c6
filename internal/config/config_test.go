package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/pipeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Search.Source != 6 || cfg.Search.Target != 8 {
		t.Errorf("default problem = d%d to d%d, want d6 to d8", cfg.Search.Source, cfg.Search.Target)
	}
	if cfg.Search.Heuristic != pipeline.HeuristicZero {
		t.Errorf("default heuristic = %q", cfg.Search.Heuristic)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestDefaultsFollowPipeline(t *testing.T) {
	cfg := Default()
	if cfg.Search.Source != pipeline.DefaultSource || cfg.Search.Target != pipeline.DefaultTarget {
		t.Errorf("default problem = d%d to d%d, want the pipeline defaults", cfg.Search.Source, cfg.Search.Target)
	}
	if cfg.Search.Heuristic != pipeline.DefaultHeuristic {
		t.Errorf("default heuristic = %q, want %q", cfg.Search.Heuristic, pipeline.DefaultHeuristic)
	}
	for _, name := range pipeline.Heuristics {
		cfg.Search.Heuristic = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("heuristic %q rejected: %v", name, err)
		}
	}
}

func TestInterpolate(t *testing.T) {
	t.Setenv("DICEPLAN_TEST_HOST", "redis.internal")
	tests := []struct {
		in, want string
	}{
		{`addr = "${DICEPLAN_TEST_HOST}:6379"`, `addr = "redis.internal:6379"`},
		{`addr = "$DICEPLAN_TEST_HOST"`, `addr = "redis.internal"`},
		{`password = "${DICEPLAN_TEST_UNSET}"`, `password = ""`},
		{`plain = "no variables"`, `plain = "no variables"`},
	}
	for _, tt := range tests {
		if got := interpolate(tt.in); got != tt.want {
			t.Errorf("interpolate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	t.Setenv("DICEPLAN_TEST_PASSWORD", "hunter2")
	path := writeFile(t, "diceplan.toml", `
[search]
source = 2
target = 6
heuristic = "naive"
max_iterations = 1000

[cache]
backend = "redis"
ttl = "1h"

[cache.redis]
addr = "redis:6379"
password = "${DICEPLAN_TEST_PASSWORD}"

[server]
timeout = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Source != 2 || cfg.Search.Target != 6 || cfg.Search.Heuristic != pipeline.HeuristicNaive {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Search.ReportEvery != 100_000 {
		t.Errorf("report_every = %d, want default", cfg.Search.ReportEvery)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Cache.Redis.Password != "hunter2" {
		t.Errorf("password = %q, want interpolated value", cfg.Cache.Redis.Password)
	}
	if cfg.Server.Timeout.Duration != 5*time.Second || cfg.Server.Addr != ":8080" {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "diceplan.yaml", `
search:
  source: 3
  target: 4
  accept_ties: true
dump:
  file: plans.txt
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Source != 3 || cfg.Search.Target != 4 || !cfg.Search.AcceptTies {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Dump.File != "plans.txt" {
		t.Errorf("dump.file = %q", cfg.Dump.File)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"syntax", "bad.toml", "[search\nsource = 2"},
		{"invalid source", "bad.toml", "[search]\nsource = 1"},
		{"unknown heuristic", "bad.toml", "[search]\nheuristic = \"magic\""},
		{"unknown backend", "bad.yaml", "cache:\n  backend: memcached\n"},
		{"bad duration", "bad.toml", "[server]\ntimeout = \"soon\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Search.Target != 8 {
		t.Errorf("target = %d, want default", cfg.Search.Target)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "diceplan.toml"))
	if err != nil {
		t.Fatalf("Load example: %v", err)
	}
	if cfg.Search.Heuristic != pipeline.HeuristicNaive || cfg.Cache.Backend != CacheFile {
		t.Errorf("example config = %+v", cfg.Search)
	}
	if cfg.Cache.Prefix != "diceplan:v1:" {
		t.Errorf("prefix = %q, want diceplan:v1:", cfg.Cache.Prefix)
	}
	if cfg.Cache.TTL.Duration != 168*time.Hour {
		t.Errorf("ttl = %v, want 168h", cfg.Cache.TTL)
	}
}
