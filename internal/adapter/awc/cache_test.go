package awc

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-etl/internal/domain"
)

// --- mock for cache tests ---

type countingResolver struct {
	calls  int
	result domain.Station
	err    error
}

func (m *countingResolver) ResolveStation(_ context.Context, _ string) (domain.Station, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedResolver tests ---

func TestCachedResolver_CacheHit(t *testing.T) {
	inner := &countingResolver{
		result: domain.Station{ID: "KOKC", Name: "Oklahoma City", Latitude: 35.39, Longitude: -97.60, Elevation: 395},
	}
	metrics := testMetrics()
	cached := NewCachedResolver(inner, 10, metrics)

	s1, err := cached.ResolveStation(context.Background(), "KOKC")
	require.NoError(t, err)
	assert.Equal(t, "Oklahoma City", s1.Name)

	s2, err := cached.ResolveStation(context.Background(), "KOKC")
	require.NoError(t, err)
	assert.Equal(t, "Oklahoma City", s2.Name)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.StationLookupCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.StationLookupCache.WithLabelValues("miss")), 0)
}

func TestCachedResolver_NotFoundIsNotCached(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, 10, testMetrics())

	for range 2 {
		st, err := cached.ResolveStation(context.Background(), "ZZZZ")
		require.NoError(t, err)
		assert.Empty(t, st.ID)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_ErrorIsNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("upstream unavailable")}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.ResolveStation(context.Background(), "KOKC")
	require.Error(t, err)
	_, err = cached.ResolveStation(context.Background(), "KOKC")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_DifferentKeysMiss(t *testing.T) {
	inner := &countingResolver{result: domain.Station{ID: "KOKC"}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.ResolveStation(context.Background(), "KOKC")
	require.NoError(t, err)
	_, err = cached.ResolveStation(context.Background(), "KJFK")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.cache.Len())
}

func TestCachedResolver_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingResolver{result: domain.Station{ID: "KOKC"}}
	cached := NewCachedResolver(inner, 2, testMetrics())
	ctx := context.Background()

	for _, id := range []string{"KOKC", "KJFK", "KOKC", "KDEN"} {
		_, err := cached.ResolveStation(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls, "KOKC was a hit before KDEN evicted KJFK")
	assert.Equal(t, 2, cached.cache.Len())
	assert.True(t, cached.cache.Contains("KOKC"))
	assert.False(t, cached.cache.Contains("KJFK"), "KJFK should have been evicted")
}

func TestCachedResolver_MinimumSize(t *testing.T) {
	inner := &countingResolver{result: domain.Station{ID: "KOKC"}}
	cached := NewCachedResolver(inner, 0, testMetrics())

	_, err := cached.ResolveStation(context.Background(), "KOKC")
	require.NoError(t, err)
	_, err = cached.ResolveStation(context.Background(), "KOKC")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cached.cache.Len())
}

func TestCachedResolver_KeysAreExact(t *testing.T) {
	inner := &countingResolver{result: domain.Station{ID: "KOKC"}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.ResolveStation(context.Background(), "KOKC")
	require.NoError(t, err)
	_, err = cached.ResolveStation(context.Background(), "kokc")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "ids are cached as given")
}
