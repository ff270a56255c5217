package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// ReportTransformer implements Transformer by decoding the report text with
// optional remote station enrichment.
type ReportTransformer struct {
	decoder  *domain.Decoder
	resolver domain.StationResolver
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewTransformer creates a ReportTransformer. Pass a nil resolver to disable
// remote station lookup.
func NewTransformer(decoder *domain.Decoder, resolver domain.StationResolver, metrics *observability.Metrics, logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{
		decoder:  decoder,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}
}

func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Observation, error) {
	obs, err := t.decoder.ParseRawEvent(raw)
	if err != nil {
		return domain.Observation{}, err
	}

	obs = domain.EnrichWithStationLookup(ctx, obs, t.resolver, t.logger)
	for _, field := range obs.MissingFields() {
		t.metrics.MissingFields.WithLabelValues(field).Inc()
	}

	return domain.MarkDecoded(obs), nil
}
