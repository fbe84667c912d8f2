package config

import (
	"sync"
	"time"
)

type Config struct {
	// IloScheme is prefixed to target addresses that do not carry one.
	IloScheme string
	// IloTimeout bounds a single controller's request sequence. Targets may
	// override it per entry in the targets file.
	IloTimeout time.Duration
	// ScrapeCeiling bounds one whole collect cycle regardless of per-target
	// timeouts.
	ScrapeCeiling time.Duration
	// CollectCacheTTL serves pull requests from the previous cycle when it is
	// younger than this. Zero disables the cache.
	CollectCacheTTL time.Duration
	SSLVerify       bool
	User            string
	Pass            string
}

var (
	config *Config
	once   sync.Once
)

func NewConfig(c *Config) {
	once.Do(func() {
		if c != nil {
			config = c
		} else {
			config = &Config{}
		}
	})
}

func GetConfig() *Config {
	if config != nil {
		return config
	}

	NewConfig(nil)
	return config
}
