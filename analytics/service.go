package analytics

import (
	"context"
	"log/slog"
	"time"
)

// Service bundles metrics, aggregation and export into one analytics
// pipeline. Register its hook on the engine bus and call Start.
type Service struct {
	metrics    *CrewMetrics
	aggregator *AggregationEngine
	exporter   *ExportManager
	logger     *slog.Logger

	exportEvery time.Duration
}

// NewService wires a metrics collector with an hourly aggregator and the
// given exporters. A console exporter is used when none are provided.
func NewService(logger *slog.Logger, exporters ...Exporter) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if len(exporters) == 0 {
		exporters = []Exporter{NewConsoleExporter("[analytics]")}
	}

	metrics := NewCrewMetrics()
	return &Service{
		metrics:     metrics,
		aggregator:  NewAggregationEngine(metrics, time.Hour),
		exporter:    NewExportManager(exporters...),
		logger:      logger,
		exportEvery: 6 * time.Hour,
	}
}

// Hook returns the hook to register with the engine's event bus.
func (s *Service) Hook() Hook { return s.metrics }

// Metrics exposes the underlying collector for dashboards.
func (s *Service) Metrics() *CrewMetrics { return s.metrics }

// Start begins background aggregation and periodic export.
func (s *Service) Start(ctx context.Context) {
	go s.aggregator.Start(ctx)
	go s.exportLoop(ctx)
}

func (s *Service) exportLoop(ctx context.Context) {
	ticker := time.NewTicker(s.exportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			daily := s.aggregator.GetAllAggregatedData(PeriodDaily)
			if err := s.exporter.ExportData(ctx, daily); err != nil {
				s.logger.Warn("analytics export failed", "error", err)
			}
		}
	}
}

// ForceAggregation triggers an immediate rollup of all periods.
func (s *Service) ForceAggregation() error {
	return s.aggregator.AggregateNow()
}

// Rollup returns the aggregated data for a period and key, if present.
func (s *Service) Rollup(period AggregationPeriod, key string) (*AggregatedData, bool) {
	return s.aggregator.GetAggregatedData(period, key)
}

// Close flushes and closes all exporters.
func (s *Service) Close() error {
	return s.exporter.Close()
}
