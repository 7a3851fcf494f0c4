package tier

import (
	"time"

	"github.com/becomeliminal/strata-go-sdk/core"
)

// CacheConfig holds the four tier policies.
type CacheConfig struct {
	Session    Config `yaml:"session"`
	ShortTerm  Config `yaml:"short_term"`
	LongVector Config `yaml:"long_vector"`
	Cold       Config `yaml:"cold"`
}

// DefaultCacheConfig returns the policies used when no configuration is
// supplied: short-lived bounded conversational tiers, a larger unexpiring
// vector tier, and a roomy cold tier absorbing demotions.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Session: Config{
			Name:        Session,
			Capacity:    256,
			DefaultTTL:  30 * time.Minute,
			MaxItemSize: 64 * 1024,
		},
		ShortTerm: Config{
			Name:        ShortTerm,
			Capacity:    512,
			DefaultTTL:  30 * time.Minute,
			MaxItemSize: 64 * 1024,
		},
		LongVector: Config{
			Name:        LongVector,
			Capacity:    1024,
			MaxItemSize: 256 * 1024,
		},
		Cold: Config{
			Name:     Cold,
			Capacity: 4096,
		},
	}
}

// Cache is the gateway over the four tiers. Tiers lock independently;
// nothing in Cache ever holds two tier locks at once.
type Cache struct {
	Session   *Store
	ShortTerm *Store
	Vector    *VectorStore
	Cold      *Store
}

// NewCache builds the four tiers. onEvent receives lifecycle events from
// every tier (each event names its tier).
func NewCache(cfg CacheConfig, clock core.Clock, onEvent func(core.Event)) *Cache {
	cfg = named(cfg)
	return &Cache{
		Session:   NewStore(cfg.Session, clock, onEvent),
		ShortTerm: NewStore(cfg.ShortTerm, clock, onEvent),
		Vector:    NewVectorStore(cfg.LongVector, clock, onEvent),
		Cold:      NewStore(cfg.Cold, clock, onEvent),
	}
}

// Promote copies an entry from one tier to another and removes the
// source copy. The source lock is released before the destination lock is
// taken (each Store call locks internally), so promotion cannot deadlock.
// Returns false when the source entry is missing or expired.
func (c *Cache) Promote(from, to *Store, namespace, key string) (bool, error) {
	item, ok := from.Get(namespace, key)
	if !ok {
		return false, nil
	}
	if err := to.Put(namespace, key, item); err != nil {
		return false, err
	}
	from.Delete(namespace, key)
	return true, nil
}

func named(cfg CacheConfig) CacheConfig {
	if cfg.Session.Name == "" {
		cfg.Session.Name = Session
	}
	if cfg.ShortTerm.Name == "" {
		cfg.ShortTerm.Name = ShortTerm
	}
	if cfg.LongVector.Name == "" {
		cfg.LongVector.Name = LongVector
	}
	if cfg.Cold.Name == "" {
		cfg.Cold.Name = Cold
	}
	return cfg
}
