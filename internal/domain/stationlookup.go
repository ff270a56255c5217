package domain

import (
	"context"
	"log/slog"
)

// EnrichWithStationLookup fills in station coordinates from a remote resolver
// when the local table had none. If resolver is nil or the lookup fails, the
// observation is returned with StationSource set accordingly (graceful
// degradation).
func EnrichWithStationLookup(ctx context.Context, obs Observation, resolver StationResolver, logger *slog.Logger) Observation {
	if resolver == nil || obs.Latitude != nil || obs.StationID == "" {
		return obs
	}

	st, err := resolver.ResolveStation(ctx, obs.StationID)
	if err != nil {
		logger.Warn("station lookup failed",
			"station_id", obs.StationID,
			"error", err,
		)
		obs.StationSource = "failed"
		return obs
	}
	if st.ID == "" {
		return obs
	}

	obs.Latitude = ptr(st.Latitude)
	obs.Longitude = ptr(st.Longitude)
	obs.Elevation = ptr(st.Elevation)
	obs.StationSource = "remote"
	return obs
}
