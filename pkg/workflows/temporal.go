// Package workflows holds the Temporal client and the todo maintenance
// workflow run by cmd/worker.
package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/logger"
)

// TemporalClient is the Temporal SDK client dialed from config.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	log       logger.Logger
}

// NewTemporalClient dials cfg.TemporalHostPort with OTel tracing so workflow
// spans join the request trace that started them.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal otel interceptor: %w", err)
	}

	log = log.With("component", "temporal")
	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     cfg.ServiceName,
		Logger:       temporalLogger{log: log},
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", cfg.TemporalHostPort, err)
	}

	log.Info("temporal client connected", "host_port", cfg.TemporalHostPort, "namespace", cfg.TemporalNamespace)
	return &TemporalClient{Client: c, Namespace: cfg.TemporalNamespace, log: log}, nil
}

// Ping asks the frontend service for its health; used by /health.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

// Close shuts the client connection down.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// temporalLogger routes SDK logs through logger.Logger.
type temporalLogger struct {
	log logger.Logger
}

var (
	_ temporallog.Logger     = temporalLogger{}
	_ temporallog.WithLogger = temporalLogger{}
)

func (l temporalLogger) Debug(msg string, keyvals ...any) { l.log.Debug(msg, keyvals...) }
func (l temporalLogger) Info(msg string, keyvals ...any)  { l.log.Info(msg, keyvals...) }
func (l temporalLogger) Warn(msg string, keyvals ...any)  { l.log.Warn(msg, keyvals...) }
func (l temporalLogger) Error(msg string, keyvals ...any) { l.log.Error(msg, keyvals...) }

func (l temporalLogger) With(keyvals ...any) temporallog.Logger {
	return temporalLogger{log: l.log.With(keyvals...)}
}
