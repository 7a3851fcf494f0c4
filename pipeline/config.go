package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/becomeliminal/strata-go-sdk/compress"
	"github.com/becomeliminal/strata-go-sdk/prompt"
	"github.com/becomeliminal/strata-go-sdk/retrieve"
	"github.com/becomeliminal/strata-go-sdk/tier"
)

// Config controls the full pipeline: tier sizing, compression,
// retrieval scoring and the assembly budget.
type Config struct {
	Tiers tier.CacheConfig `yaml:"tiers"`

	// CompressionMethod is applied to every stored turn that is not a
	// duplicate. See the compress package for supported methods.
	CompressionMethod compress.Method `yaml:"compression_method"`
	Debug             bool            `yaml:"debug"`

	// Beta weights the negative-example penalty during retrieval.
	Beta           float64 `yaml:"beta"`
	DedupThreshold float64 `yaml:"dedup_threshold"`
	TopK           int     `yaml:"top_k"`

	// NegativeCapacity bounds the shared negative-example vault.
	NegativeCapacity int `yaml:"negative_capacity"`

	TokenBudget  int    `yaml:"token_budget"`
	SystemPrompt string `yaml:"system_prompt"`
}

// DefaultConfig provides sensible defaults for all pipeline settings.
var DefaultConfig = Config{
	Tiers:             tier.DefaultCacheConfig(),
	CompressionMethod: compress.MethodDiffPatch,
	Beta:              retrieve.DefaultBeta,
	DedupThreshold:    retrieve.DefaultDedupThreshold,
	TopK:              5,
	NegativeCapacity:  64,
	TokenBudget:       prompt.DefaultBudget,
	SystemPrompt:      "You are a helpful assistant.",
}

// LoadConfig reads a YAML config file, layering it over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
