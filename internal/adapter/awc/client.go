// Package awc resolves station metadata from the Aviation Weather Center
// data API.
package awc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// DefaultBaseURL is the stationinfo endpoint of the AWC data API.
const DefaultBaseURL = "https://aviationweather.gov/api/data/stationinfo"

// Client implements domain.StationResolver using the AWC stationinfo API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a station metadata client. An empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ResolveStation fetches metadata for one ICAO id. A zero Station with a nil
// error means the API does not know the id.
func (c *Client) ResolveStation(ctx context.Context, id string) (domain.Station, error) {
	params := url.Values{
		"ids":    {id},
		"format": {"json"},
	}

	start := time.Now()
	st, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.StationLookupAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.StationLookupRequests.WithLabelValues("error").Inc()
	case st.ID == "":
		c.metrics.StationLookupRequests.WithLabelValues("not_found").Inc()
		c.logger.Debug("station not found", "station_id", id)
	default:
		c.metrics.StationLookupRequests.WithLabelValues("success").Inc()
	}
	return st, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Station{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Station{}, fmt.Errorf("station info request: %w", err)
	}
	defer resp.Body.Close()

	// The API answers 204 for ids it has no record of.
	if resp.StatusCode == http.StatusNoContent {
		return domain.Station{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Station{}, fmt.Errorf("awc API error: status %d: %s", resp.StatusCode, body)
	}

	var infos []stationInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return domain.Station{}, fmt.Errorf("decode response: %w", err)
	}
	if len(infos) == 0 {
		return domain.Station{}, nil
	}

	s := infos[0]
	return domain.Station{
		ID:        s.ICAOID,
		Name:      s.Site,
		Latitude:  s.Lat,
		Longitude: s.Lon,
		Elevation: s.Elev,
	}, nil
}

// AWC API response types.

type stationInfo struct {
	ICAOID  string  `json:"icaoId"`
	Site    string  `json:"site"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Elev    float64 `json:"elev"` // meters
	State   string  `json:"state"`
	Country string  `json:"country"`
}
