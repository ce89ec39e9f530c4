package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/events"
)

type scriptedReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	commitErr error
	closed    bool
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { r.closed = true; return nil }

type recordingHandler struct {
	published []events.PublishEvent
	lending   []events.BorrowReturnEvent
	fail      error
}

func (h *recordingHandler) HandlePublished(_ context.Context, ev events.PublishEvent) (int, error) {
	h.published = append(h.published, ev)
	return 1, nil
}

func (h *recordingHandler) HandleBorrowReturn(_ context.Context, ev events.BorrowReturnEvent) (domain.Transaction, error) {
	h.lending = append(h.lending, ev)
	if h.fail != nil {
		return domain.Transaction{}, h.fail
	}
	return domain.Transaction{Ref: "TXN-20240101000000-ABCDEF12"}, nil
}

type memDeduper struct {
	seen map[string]bool
	err  error
}

func (d *memDeduper) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s:%d:%d", topic, partition, offset)
}

func (d *memDeduper) Seen(_ context.Context, key string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	was := d.seen[key]
	d.seen[key] = true
	return was, nil
}

func (d *memDeduper) Forget(_ context.Context, key string) error {
	delete(d.seen, key)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestConsumerRoutesByTopic(t *testing.T) {
	reader := &scriptedReader{msgs: []kafka.Message{
		{Topic: events.TopicBookPublished, Offset: 1, Value: []byte(`{"bookDTO":{"id":4},"publishedCopies":10,"remainingCopies":5}`)},
		{Topic: events.TopicBookBorrowed, Offset: 2, Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"BORROWED"}`)},
		{Topic: events.TopicBookReturned, Offset: 3, Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"RETURNED"}`)},
	}}
	h := &recordingHandler{}

	require.NoError(t, NewConsumer(discard(), reader, h, nil).Run(context.Background()))

	require.Len(t, h.published, 1)
	assert.Equal(t, int64(4), h.published[0].Book.ID)
	require.Len(t, h.lending, 2)
	assert.Equal(t, events.ActionReturned, h.lending[1].Action)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	assert.True(t, reader.closed)
}

func TestConsumerDropsBadEventsAndContinues(t *testing.T) {
	reader := &scriptedReader{msgs: []kafka.Message{
		{Topic: events.TopicBookBorrowed, Offset: 1, Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"RETURNED"}`)},
		{Topic: events.TopicBookBorrowed, Offset: 2, Value: []byte(`not json`)},
		{Topic: events.TopicBookBorrowed, Offset: 3, Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":9,"action":"BORROWED"}`)},
		{Topic: events.TopicBookBorrowed, Offset: 4, Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"BORROWED"}`)},
	}}
	h := &recordingHandler{fail: domain.ErrInsufficientStock}

	require.NoError(t, NewConsumer(discard(), reader, h, nil).Run(context.Background()))

	// the first two never reach the handler
	assert.Len(t, h.lending, 2)
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
}

func TestConsumerSkipsDuplicates(t *testing.T) {
	msg := kafka.Message{Topic: events.TopicBookBorrowed, Partition: 0, Offset: 5,
		Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"BORROWED"}`)}
	reader := &scriptedReader{msgs: []kafka.Message{msg, msg}}
	h := &recordingHandler{}

	require.NoError(t, NewConsumer(discard(), reader, h, &memDeduper{seen: map[string]bool{}}).Run(context.Background()))

	assert.Len(t, h.lending, 1)
	assert.Equal(t, []int64{5, 5}, reader.committed)
}

func TestConsumerProcessesWhenDeduperDown(t *testing.T) {
	reader := &scriptedReader{msgs: []kafka.Message{
		{Topic: events.TopicBookBorrowed, Offset: 1, Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"BORROWED"}`)},
	}}
	h := &recordingHandler{}

	require.NoError(t, NewConsumer(discard(), reader, h, &memDeduper{err: errors.New("connection refused")}).Run(context.Background()))
	assert.Len(t, h.lending, 1)
}

type brokenReader struct{ scriptedReader }

func (r *brokenReader) FetchMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, io.ErrUnexpectedEOF
}

func TestConsumerReturnsReaderErrors(t *testing.T) {
	err := NewConsumer(discard(), &brokenReader{}, &recordingHandler{}, nil).Run(context.Background())
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestConsumerReappliesEventInterruptedBeforeCommit(t *testing.T) {
	msg := kafka.Message{Topic: events.TopicBookBorrowed, Partition: 0, Offset: 7,
		Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":1,"action":"BORROWED"}`)}
	idem := &memDeduper{seen: map[string]bool{}}

	interrupted := &recordingHandler{fail: context.Canceled}
	first := &scriptedReader{msgs: []kafka.Message{msg}, commitErr: context.Canceled}
	require.NoError(t, NewConsumer(discard(), first, interrupted, idem).Run(context.Background()))
	require.Len(t, interrupted.lending, 1)
	assert.Empty(t, first.committed)

	h := &recordingHandler{}
	second := &scriptedReader{msgs: []kafka.Message{msg}}
	require.NoError(t, NewConsumer(discard(), second, h, idem).Run(context.Background()))

	assert.Len(t, h.lending, 1)
	assert.Equal(t, []int64{7}, second.committed)
}

func TestConsumerKeepsKeyForRejectedEvent(t *testing.T) {
	msg := kafka.Message{Topic: events.TopicBookBorrowed, Partition: 0, Offset: 8,
		Value: []byte(`{"storeId":1,"inventoryId":2,"bookId":4,"quantity":9,"action":"BORROWED"}`)}
	idem := &memDeduper{seen: map[string]bool{}}

	first := &scriptedReader{msgs: []kafka.Message{msg}, commitErr: errors.New("broker unavailable")}
	require.NoError(t, NewConsumer(discard(), first, &recordingHandler{fail: domain.ErrInsufficientStock}, idem).Run(context.Background()))

	h := &recordingHandler{}
	require.NoError(t, NewConsumer(discard(), &scriptedReader{msgs: []kafka.Message{msg}}, h, idem).Run(context.Background()))
	assert.Empty(t, h.lending)
}
