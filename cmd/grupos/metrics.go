package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jpedro002/middleware/internal/config"
	"github.com/jpedro002/middleware/internal/metrics"
	"github.com/jpedro002/middleware/internal/metrics/datadog"
	"github.com/jpedro002/middleware/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend. The returned func
// flushes it and restores the no-op backend.
func setupMetrics(p config.Pipeline, runID string, log *zap.Logger) (func(), error) {
	var closeFn func() error

	switch p.Metrics.Backend {
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}, nil

	case "prompush":
		b, err := prompush.NewBackend(prompush.Config{
			GatewayURL: p.Metrics.PushgatewayURL,
			Job:        p.Job,
			Grouping:   map[string]string{"run_id": runID},
		})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			GlobalTags: []string{"run_id:" + runID},
		})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)
		closeFn = b.Close

	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", p.Metrics.Backend)
	}

	log.Info("metrics enabled", zap.String("backend", p.Metrics.Backend))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
		if closeFn != nil {
			if err := closeFn(); err != nil {
				log.Warn("metrics close failed", zap.Error(err))
			}
		}
		metrics.Reset()
	}, nil
}
