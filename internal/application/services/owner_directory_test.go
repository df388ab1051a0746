package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOwnerDirectory_CachesNames(t *testing.T) {
	profiles := &FakeProfiles{names: map[string]string{"owner-a": "Alice Anders"}}
	mCounter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
	dir := NewOwnerDirectory(profiles, 16, time.Minute, zap.NewNop(), mCounter)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.Equal(t, "Alice Anders", dir.DisplayName(ctx, "owner-a"))
	}

	assert.Equal(t, 1, profiles.Calls())
	assert.Equal(t, float64(2), testutil.ToFloat64(mCounter.WithLabelValues("owner_cache_hit_total")))
	assert.Equal(t, float64(1), testutil.ToFloat64(mCounter.WithLabelValues("owner_cache_miss_total")))
}

func TestOwnerDirectory_UnknownOwnerIsEmpty(t *testing.T) {
	profiles := &FakeProfiles{names: map[string]string{}}
	dir := NewOwnerDirectory(profiles, 16, time.Minute, zap.NewNop(), nil)

	assert.Equal(t, "", dir.DisplayName(context.Background(), "ghost"))
}

func TestOwnerDirectory_ErrorsAreNotCached(t *testing.T) {
	profiles := &FakeProfiles{names: map[string]string{"owner-a": "Alice Anders"}, Err: errors.New("db down")}
	dir := NewOwnerDirectory(profiles, 16, time.Minute, zap.NewNop(), nil)
	ctx := context.Background()

	assert.Equal(t, "", dir.DisplayName(ctx, "owner-a"))

	profiles.mu.Lock()
	profiles.Err = nil
	profiles.mu.Unlock()

	assert.Equal(t, "Alice Anders", dir.DisplayName(ctx, "owner-a"))
	assert.Equal(t, 2, profiles.Calls())
}

func TestOwnerDirectory_EntriesExpire(t *testing.T) {
	profiles := &FakeProfiles{names: map[string]string{"owner-a": "Alice Anders"}}
	dir := NewOwnerDirectory(profiles, 16, 20*time.Millisecond, zap.NewNop(), nil)
	ctx := context.Background()

	dir.DisplayName(ctx, "owner-a")
	assert.Eventually(t, func() bool {
		dir.DisplayName(ctx, "owner-a")
		return profiles.Calls() >= 2
	}, time.Second, 10*time.Millisecond)
}
