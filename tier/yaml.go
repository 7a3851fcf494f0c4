package tier

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a tier config, accepting Go duration strings
// ("30m", "1h") for default_ttl.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name        string `yaml:"name"`
		Capacity    int    `yaml:"capacity"`
		DefaultTTL  string `yaml:"default_ttl"`
		MaxItemSize int    `yaml:"max_item_size"`
		Disabled    bool   `yaml:"disabled"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Capacity = raw.Capacity
	c.MaxItemSize = raw.MaxItemSize
	c.Disabled = raw.Disabled
	c.DefaultTTL = 0
	if raw.DefaultTTL != "" {
		ttl, err := time.ParseDuration(raw.DefaultTTL)
		if err != nil {
			return fmt.Errorf("tier %s: default_ttl: %w", raw.Name, err)
		}
		c.DefaultTTL = ttl
	}
	return nil
}
