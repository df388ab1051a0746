package services

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-share-api/internal/domain/profile"
)

// OwnerDirectory resolves owner display names for public share pages and
// keeps them in a small TTL cache.
type OwnerDirectory struct {
	profiles profile.Repository
	cache    *expirable.LRU[string, string]
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func NewOwnerDirectory(
	profiles profile.Repository,
	size int,
	ttl time.Duration,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) *OwnerDirectory {
	if size <= 0 {
		size = 1
	}

	return &OwnerDirectory{
		profiles: profiles,
		cache:    expirable.NewLRU[string, string](size, nil, ttl),
		logger:   logger,
		mCounter: mCounter,
	}
}

// DisplayName returns "" when the owner has no profile or the lookup fails.
// Failed lookups are not cached.
func (d *OwnerDirectory) DisplayName(ctx context.Context, ownerID string) string {
	if name, ok := d.cache.Get(ownerID); ok {
		d.inc("owner_cache_hit_total")
		return name
	}
	d.inc("owner_cache_miss_total")

	name, err := d.profiles.FetchDisplayName(ctx, ownerID)
	if err != nil {
		d.logger.Warn("owner display name lookup failed",
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return ""
	}

	d.cache.Add(ownerID, name)

	return name
}

func (d *OwnerDirectory) inc(label string) {
	if d.mCounter != nil {
		d.mCounter.WithLabelValues(label).Inc()
	}
}
