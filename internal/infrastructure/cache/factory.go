package cache

import (
	"fmt"

	"github.com/shopadmin/scan-gateway/internal/infrastructure/config"
)

// NewSummaryCache creates the summary cache selected by configuration
func NewSummaryCache(cfg *config.Config) (SummaryCache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return NewRedisSummaryCache(&cfg.Redis, cfg.Cache.SummaryTTL)
	case "memory":
		return NewInMemorySummaryCache(cfg.Cache.SummaryTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Cache.Backend)
	}
}
