package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TodoCounter reports how many todos are open and how many are done.
type TodoCounter interface {
	Counts(ctx context.Context) (active, completed int, err error)
}

var (
	stateActive    = metric.WithAttributes(attribute.String("state", "active"))
	stateCompleted = metric.WithAttributes(attribute.String("state", "completed"))
)

// RegisterTodoGauges registers the observable gauge todo.count{state}. It is
// read from counter on every collection, so a scrape costs one List.
func RegisterTodoGauges(mp metric.MeterProvider, counter TodoCounter) error {
	meter := mp.Meter("github.com/ghuser/todoapp/pkg/telemetry")

	gauge, err := meter.Int64ObservableGauge("todo.count",
		metric.WithDescription("Number of stored todos by state"),
		metric.WithUnit("{todo}"),
	)
	if err != nil {
		return fmt.Errorf("create todo.count gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		active, completed, err := counter.Counts(ctx)
		if err != nil {
			return fmt.Errorf("count todos: %w", err)
		}
		o.ObserveInt64(gauge, int64(active), stateActive)
		o.ObserveInt64(gauge, int64(completed), stateCompleted)
		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("register todo.count callback: %w", err)
	}
	return nil
}
