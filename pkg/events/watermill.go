// Package events is the transactional event bus shared by the bounded
// contexts. It runs Watermill's SQL transport on the same Postgres database
// as the items table, so a repository can write a row and its event in one
// transaction.
//
// Subscribers in the same consumer group (cfg.ServiceName + "-consumer")
// share the work: each message is handled by one worker instance. Handlers
// must tolerate redelivery; a failing handler is retried with exponential
// backoff and the message is Nacked once retries run out.
//
// Trace context travels in message metadata, so a worker span continues the
// API request that published the event.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	errChanSize     = 100

	// forwarderTopic holds enveloped outbox messages until the forwarder
	// moves them to their real topic.
	forwarderTopic = "_forwarder_queue"

	// Metadata keys set by NewJSONMessage.
	MetadataEventID      = "event_id"
	MetadataEventVersion = "event_version"
)

// Handler processes one delivered message. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// EventBus publishes domain events through Postgres and fans them out to
// subscribers.
type EventBus struct {
	publisher    message.Publisher
	subscriber   *watermillsql.Subscriber
	fwd          *forwarder.Forwarder
	db           *sql.DB
	log          logger.Logger
	wlog         watermill.LoggerAdapter
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus connects to cfg.DefinitionDatabaseURL and publishes straight to
// the target topics. The Watermill tables are created on first use.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, false)
}

// NewEventBusWithForwarder is like NewEventBus, but Publish and transactional
// publishers write to an outbox queue. Call StartForwarder to relay the
// queue to the target topics.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, true)
}

func newEventBus(cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DefinitionDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	bus := &EventBus{
		db:           db,
		log:          log,
		wlog:         watermill.NewSlogLogger(log.ToSlog().With("component", "watermill")),
		useForwarder: useForwarder,
	}

	pub, err := bus.newSQLPublisher(db, true)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	bus.publisher = bus.maybeForward(pub)

	sub, err := bus.newSQLSubscriber(cfg.ServiceName + "-consumer")
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	bus.subscriber = sub

	return bus, nil
}

func (q *EventBus) newSQLPublisher(db watermillsql.ContextExecutor, initSchema bool) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: initSchema,
	}, q.wlog)
}

func (q *EventBus) newSQLSubscriber(group string) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, q.wlog)
}

// maybeForward envelopes messages for the outbox queue in forwarder mode.
func (q *EventBus) maybeForward(pub message.Publisher) message.Publisher {
	if !q.useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the outbox relay in the background and returns once it
// is accepting messages. It may be called once, and only in forwarder mode.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return errors.New("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	queueSub, err := q.newSQLSubscriber("forwarder-consumer")
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := q.newSQLPublisher(q.db, true)
	if err != nil {
		_ = queueSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(queueSub, targetPub, q.wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = queueSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
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

// DB exposes the bus connection so repositories can open the transaction
// they pass to NewTxPublisher.
func (q *EventBus) DB() *sql.DB {
	return q.db
}

// NewTxPublisher returns a publisher that writes inside tx. The event
// becomes visible only if tx commits.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := q.newSQLPublisher(tx, false)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	return q.maybeForward(pub), nil
}

// Publish sends msgs to topic with the trace context of ctx attached.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		injectTrace(ctx, msg)
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// PublishJSON encodes v with NewJSONMessage and publishes it to topic.
func (q *EventBus) PublishJSON(ctx context.Context, topic, eventID string, version int, v any) error {
	msg, err := NewJSONMessage(eventID, version, v)
	if err != nil {
		return err
	}
	return q.Publish(ctx, topic, msg)
}

// NewJSONMessage builds a message with v as its JSON payload. eventID and
// version go into metadata so consumers can deduplicate redeliveries.
func NewJSONMessage(eventID string, version int, v any) (*message.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventID, eventID)
	msg.Metadata.Set(MetadataEventVersion, strconv.Itoa(version))
	return msg, nil
}

// Subscribe starts consuming topic in a background goroutine. A nil handler
// result Acks the message. Otherwise the handler is retried (1s, 2s, 4s) and
// the message is Nacked, with the final error sent on the returned channel.
//
// The channel is buffered and closed when the subscription ends. Drain it:
//
//	errCh, err := bus.Subscribe(ctx, topic, handler)
//	go func() { for err := range errCh { log.ErrorContext(ctx, "subscriber error", "error", err) } }()
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChanSize)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)
		for msg := range ch {
			q.deliver(ctx, topic, msg, handler, errCh)
		}
	}()

	return errCh, nil
}

func (q *EventBus) deliver(ctx context.Context, topic string, msg *message.Message, handler Handler, errCh chan<- error) {
	msgCtx := extractTrace(ctx, msg)

	err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log)
	if err == nil {
		msg.Ack()
		return
	}

	msg.Nack()
	select {
	case errCh <- err:
	default:
		q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
			"error", err, "topic", topic, MetadataEventID, msg.Metadata.Get(MetadataEventID))
	}
}

func injectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
}

// retryWithBackoff calls handler until it succeeds, attempts run out or ctx
// ends. The wait starts at delay and doubles with jitter.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	delay time.Duration,
	log logger.Logger,
) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.Multiplier = 2
	b.RandomizationFactor = 0.2

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, handler(ctx, msg)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WarnContext(ctx, "events: handler failed, retrying",
				"attempt", attempt, "max_attempts", attempts, "next_delay", next, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("events: handler gave up after %d attempts: %w", attempt, err)
	}
	return nil
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops consuming, waits up to shutdownTimeout for running handlers
// and then releases the publisher and database. Every step runs even if an
// earlier one fails.
func (q *EventBus) Close() error {
	errs := []error{q.subscriber.Close()}
	if q.fwd != nil {
		errs = append(errs, q.fwd.Close())
	}
	if !waitTimeout(&q.wg, shutdownTimeout) {
		q.log.Error("events: in-flight handlers still running at shutdown", "timeout", shutdownTimeout)
	}
	errs = append(errs, q.publisher.Close(), q.db.Close())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("events: close: %w", err)
	}
	return nil
}

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
