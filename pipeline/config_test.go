package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/becomeliminal/strata-go-sdk/compress"
	"github.com/becomeliminal/strata-go-sdk/pipeline"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	data := `
tiers:
  session:
    capacity: 32
    default_ttl: 45m
    max_item_size: 1024
compression_method: zstd
beta: 0.5
token_budget: 2048
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Tiers.Session.Capacity != 32 {
		t.Errorf("Expected session capacity 32, got %d", cfg.Tiers.Session.Capacity)
	}
	if cfg.Tiers.Session.DefaultTTL != 45*time.Minute {
		t.Errorf("Expected 45m TTL, got %v", cfg.Tiers.Session.DefaultTTL)
	}
	if cfg.CompressionMethod != compress.MethodZstd {
		t.Errorf("Expected zstd, got %s", cfg.CompressionMethod)
	}
	if cfg.Beta != 0.5 {
		t.Errorf("Expected beta 0.5, got %f", cfg.Beta)
	}
	// Untouched keys keep their defaults.
	if cfg.TopK != pipeline.DefaultConfig.TopK {
		t.Errorf("Expected default top_k, got %d", cfg.TopK)
	}
	if cfg.DedupThreshold != pipeline.DefaultConfig.DedupThreshold {
		t.Errorf("Expected default dedup threshold, got %f", cfg.DedupThreshold)
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	data := "tiers:\n  session:\n    default_ttl: not-a-duration\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := pipeline.LoadConfig(path); err == nil {
		t.Error("Expected a duration parse error")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := pipeline.LoadConfig("/nonexistent/pipeline.yaml"); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
