package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robalyx/fuzzy/internal/setup/config"
	"github.com/uptrace/uptrace-go/uptrace"
)

// ServiceName identifies this program to tracing and error reporting backends.
const ServiceName = "fuzzy"

const sentryFlushTimeout = 2 * time.Second

// ShutdownFunc flushes and stops a telemetry exporter.
type ShutdownFunc func(ctx context.Context) error

// ConfigureTracing exports OpenTelemetry traces to Uptrace when a DSN is configured.
// It reports whether tracing was enabled.
func ConfigureTracing(cfg *config.Telemetry, version string) (ShutdownFunc, bool) {
	if cfg.UptraceDSN == "" {
		return func(context.Context) error { return nil }, false
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(ServiceName),
		uptrace.WithServiceVersion(version),
		uptrace.WithDeploymentEnvironment(cfg.Environment),
	)

	return uptrace.Shutdown, true
}

// ConfigureSentry initializes the global Sentry client when a DSN is configured.
// It reports whether Sentry was enabled.
func ConfigureSentry(cfg *config.Telemetry, version string) (ShutdownFunc, bool, error) {
	if cfg.SentryDSN == "" {
		return func(context.Context) error { return nil }, false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     fmt.Sprintf("%s@%s", ServiceName, version),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return func(context.Context) error {
		sentry.Flush(sentryFlushTimeout)
		return nil
	}, true, nil
}
