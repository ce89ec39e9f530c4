package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/application"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/events"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/tracing"
)

// Topics consumed by the inventory service.
var Topics = []string{events.TopicBookPublished, events.TopicBookBorrowed, events.TopicBookReturned}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

const forgetTimeout = 2 * time.Second

type Handler interface {
	HandlePublished(ctx context.Context, ev events.PublishEvent) (int, error)
	HandleBorrowReturn(ctx context.Context, ev events.BorrowReturnEvent) (domain.Transaction, error)
}

type Consumer struct {
	log    *slog.Logger
	reader MessageReader
	svc    Handler
	idem   Deduper
	tracer trace.Tracer
}

func NewReader(brokers []string, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     group,
		GroupTopics: Topics,
	})
}

// NewConsumer wires a consumer. idem may be nil, in which case every
// delivery is processed.
func NewConsumer(log *slog.Logger, reader MessageReader, svc Handler, idem Deduper) *Consumer {
	return &Consumer{
		log:    log,
		reader: reader,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("inventory-consumer"),
	}
}

// Run processes messages until ctx ends or the reader fails. A message that
// cannot be applied is logged and committed; it is never retried. When the
// failure is not the event's own fault, its idempotency key is released so
// an uncommitted redelivery is applied instead of skipped.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		key, dup := c.duplicate(ctx, msg)
		if dup {
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			c.drop(ctx, msg, key, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		}
	}
}

// rejected reports whether err is final for the event itself, so delivering
// it again cannot change the outcome.
func rejected(err error) bool {
	return errors.Is(err, events.ErrMalformedEvent) || application.IsClientError(err)
}

func (c *Consumer) drop(ctx context.Context, msg kafka.Message, key string, err error) {
	level := slog.LevelError
	if rejected(err) {
		level = slog.LevelWarn
	}
	c.log.Log(ctx, level, "event dropped",
		"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset,
		"traceparent", tracing.HeaderValue(msg.Headers, tracing.TraceparentHeader), "err", err)

	if key == "" || rejected(err) {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), forgetTimeout)
	defer cancel()
	if ferr := c.idem.Forget(fctx, key); ferr != nil {
		c.log.Warn("idempotency release failed", "key", key, "err", ferr)
	}
}

// duplicate claims the message's idempotency key. The key is empty when no
// claim was made.
func (c *Consumer) duplicate(ctx context.Context, msg kafka.Message) (string, bool) {
	if c.idem == nil {
		return "", false
	}
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Warn("idempotency check failed, processing anyway", "key", key, "err", err)
		return "", false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
	}
	return key, seen
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume "+msg.Topic, trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		))
	defer span.End()

	switch msg.Topic {
	case events.TopicBookPublished:
		ev, err := events.DecodePublishEvent(msg.Value)
		if err != nil {
			return err
		}
		n, err := c.svc.HandlePublished(msgCtx, ev)
		c.log.Info("inventory seeded", "book_id", ev.Book.ID, "created", n)
		return err

	case events.TopicBookBorrowed, events.TopicBookReturned:
		ev, err := events.DecodeBorrowReturnEvent(msg.Topic, msg.Value)
		if err != nil {
			return err
		}
		txn, err := c.svc.HandleBorrowReturn(msgCtx, ev)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("inventory %d %s x%d: %w", ev.InventoryID, ev.Action, ev.Quantity, err)
		}
		c.log.Info("inventory updated", "inventory_id", ev.InventoryID, "action", ev.Action,
			"quantity", ev.Quantity, "transaction_ref", txn.Ref)
		return nil
	}
	return fmt.Errorf("%w: unexpected topic %s", events.ErrMalformedEvent, msg.Topic)
}
