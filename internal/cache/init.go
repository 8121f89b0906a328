package cache

import (
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/logger"
)

// Initialize creates the process wide in-memory cache
func Initialize(cfg *config.Configuration, log *logger.Logger) *InMemoryCache {
	log.Infow("initializing cache system", "enabled", cfg.Cache.Enabled)
	return NewInMemoryCache(cfg)
}
