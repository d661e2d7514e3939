package pipeline

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Provider != "gemini" {
		t.Errorf("default provider = %q", cfg.Provider)
	}
	if cfg.Workers != defaultExtractWorkers {
		t.Errorf("default workers = %d", cfg.Workers)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "pipeline.yaml", "provider: deepseek\nworkers: 4\ncache_dir: /tmp/cc\n")

	cfg := LoadConfig(path)
	if cfg.Provider != "deepseek" || cfg.Workers != 4 || cfg.CacheDir != "/tmp/cc" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "pipeline.yaml", "provider: [unterminated")

	cfg := LoadConfig(path)
	if cfg.Provider != "gemini" || cfg.Workers != defaultExtractWorkers {
		t.Errorf("malformed config must fall back to defaults, got %+v", cfg)
	}
}

func TestLoadConfigZeroWorkersClamped(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "pipeline.yaml", "workers: 0\n")

	if cfg := LoadConfig(path); cfg.Workers != defaultExtractWorkers {
		t.Errorf("workers = %d, want default", cfg.Workers)
	}
}
