// Package events provides the PostgreSQL-backed pub/sub EventBus that carries
// todo domain events, built on Watermill's SQL transport.
//
// The todo repository writes events through NewTxPublisher inside the same
// transaction as the row change (transactional outbox). With the forwarder
// enabled, those writes land in an internal queue and the Forwarder daemon
// moves them to their real topics after commit.
//
// Delivery semantics:
//   - ConsumerGroup (<service>-consumer): messages are load-balanced across all
//     worker instances in the group, so only one instance processes each message.
//
// Handlers should be idempotent. On failure a message is retried up to 3 times
// with exponential backoff, then Nacked and redelivered.
//
// OTel context propagation: trace context is injected into message metadata on
// publish and extracted in Subscribe, so a worker span continues the request trace.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
)

// EventBus is a PostgreSQL-backed pub/sub EventBus built on Watermill's SQL
// transport, which uses FOR UPDATE SKIP LOCKED for concurrent-safe delivery.
// The bus borrows the application's *sql.DB and never closes it.
type EventBus struct {
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	db         *sql.DB
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	wg         sync.WaitGroup

	// outboxTopic is the forwarder queue; empty means publish directly.
	outboxTopic   string
	consumerGroup string
}

// NewEventBus returns a bus that publishes straight to topics. The worker uses
// it to subscribe.
//
// All instances with the same cfg.ServiceName share a ConsumerGroup, so each
// message is processed by exactly one instance (load-balanced, not broadcast).
func NewEventBus(db *database.Database, cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(db, cfg, log, "")
}

// NewEventBusWithForwarder returns a bus whose publishes land in the
// "<service>_outbox" queue. Call StartForwarder to move them to their topics.
func NewEventBusWithForwarder(db *database.Database, cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(db, cfg, log, cfg.ServiceName+"_outbox")
}

func newEventBus(db *database.Database, cfg *config.Config, log logger.Logger, outboxTopic string) (*EventBus, error) {
	if db.Dialect() != database.DialectPostgres {
		return nil, fmt.Errorf("events: event bus needs postgres, got %s", db.Dialect())
	}

	q := &EventBus{
		db:            db.DB(),
		log:           log,
		wlog:          &slogAdapter{log: log},
		outboxTopic:   outboxTopic,
		consumerGroup: cfg.ServiceName + "-consumer",
	}

	sub, err := q.newSubscriber(q.consumerGroup)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	q.subscriber = sub
	return q, nil
}

func (q *EventBus) newPublisher(db watermillsql.ContextExecutor, autoInit bool) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: autoInit,
	}, q.wlog)
}

func (q *EventBus) newSubscriber(group string) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, q.wlog)
}

// toOutbox wraps pub in a forwarder envelope publisher when the bus has an
// outbox topic.
func (q *EventBus) toOutbox(pub message.Publisher) message.Publisher {
	if q.outboxTopic == "" {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: q.outboxTopic})
}

// StartForwarder runs the daemon that drains the outbox queue into the real
// topics, and returns once it is running. Call it once, on a bus built with
// NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if q.outboxTopic == "" {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	fwdSub, err := q.newSubscriber(q.outboxTopic + "-forwarder")
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := q.newPublisher(q.db, true)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, q.wlog, forwarder.Config{
		ForwarderTopic: q.outboxTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started", "outbox_topic", q.outboxTopic)
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// NewTxPublisher returns a Publisher whose writes run inside tx, so a todo
// row change and its event commit or roll back together. Outbox tables exist
// once the bus has started, so it never initializes schema.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := q.newPublisher(tx, false)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	return q.toOutbox(pub), nil
}

// InjectTrace copies the OTel trace context from ctx into msg's metadata.
func InjectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

// Subscribe registers handler to process messages from topic asynchronously.
// The handler receives a context with the publisher's OTel trace restored from
// message metadata.
//
// Ack/Nack is managed by the bus:
//   - handler returns nil   → Ack (message consumed)
//   - handler returns error → retried up to 3× with exponential backoff (1s, 2s, 4s)
//   - all retries exhausted → Nack + error forwarded to the returned channel
//
// The returned error channel is buffered (capacity 100). Callers must drain it.
// All in-flight handlers complete before Close() returns.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, 100)
	propagator := otel.GetTextMapPropagator()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			carrier := propagation.MapCarrier{}
			for k, v := range msg.Metadata {
				carrier[k] = v
			}
			msgCtx := propagator.Extract(ctx, carrier)

			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
			} else {
				msg.Ack()
			}
		}
	}()

	return errCh, nil
}

// retryWithBackoff calls handler up to maxRetries times with exponential backoff.
// Returns nil on first success; returns the last error after all retries exhaust.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler func(context.Context, *message.Message) error,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt < maxRetries {
			log.WarnContext(ctx, "events: handler failed, retrying",
				"attempt", attempt,
				"max_retries", maxRetries,
				"next_delay", delay,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("events: handler failed after %d retries: %w", maxRetries, err)
}

// Ping checks the EventBus database connection health.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close gracefully shuts down the EventBus.
// Shutdown order: stop subscriber, stop forwarder (if running), wait for
// in-flight handlers (30 s max). The database stays open.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}

	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	select {
	case <-done:
	case <-ctx.Done():
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}
	return nil
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
