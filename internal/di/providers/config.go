// Package providers contains dependency injection providers for the Inkpost server.
package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/inkpost/inkpost-server/internal/config"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/metrics"
	"github.com/inkpost/inkpost-server/internal/telemetry"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Inkpost Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"search_enabled", cfg.Search.Enabled,
	)

	return log, nil
}

// TelemetryHandle flushes the tracer provider on shutdown.
type TelemetryHandle struct {
	shutdown telemetry.ShutdownFunc
}

// Shutdown implements do.Shutdownable.
func (h *TelemetryHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.shutdown(ctx)
}

// ProvideTelemetry installs the global tracer provider.
func ProvideTelemetry(i do.Injector) (*TelemetryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Telemetry.OTLPEndpoint != "" {
		log.Info("Tracing enabled", "endpoint", cfg.Telemetry.OTLPEndpoint)
	}

	return &TelemetryHandle{shutdown: shutdown}, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
