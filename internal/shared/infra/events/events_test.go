package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/medialist/internal/shared/events"
)

// ---------------- Fakes ----------------

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type fakeNATS struct {
	subjects []string
	payloads [][]byte
	closed   bool
}

func (n *fakeNATS) Publish(subj string, data []byte) error {
	n.subjects = append(n.subjects, subj)
	n.payloads = append(n.payloads, data)
	return nil
}

func (n *fakeNATS) Close() { n.closed = true }

type fakeSubscriber struct {
	subject string
	cb      nats.MsgHandler
	err     error
}

func (s *fakeSubscriber) Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.subject = subj
	s.cb = cb
	return nil, nil
}

type recordingHandler struct {
	mu   sync.Mutex
	keys []string
	msgs [][]byte
	done chan struct{}
}

func newRecordingHandler(expected int) *recordingHandler {
	return &recordingHandler{done: make(chan struct{}, expected)}
}

func (h *recordingHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	h.mu.Lock()
	h.keys = append(h.keys, key)
	h.msgs = append(h.msgs, payload)
	h.mu.Unlock()
	h.done <- struct{}{}
}

func (h *recordingHandler) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(time.Second):
			t.Fatalf("timeout esperando mensaje %d", i+1)
		}
	}
}

type fakeReader struct {
	msgs chan kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "saved_filter", Brokers: []string{"localhost:9092"}}
}

func testEvent() *sharedEvents.IntegrationEvent {
	return &sharedEvents.IntegrationEvent{
		Type:  "saved_filter.saved",
		Topic: "saved_filter",
		Key:   "sf-abc",
		Data:  json.RawMessage(`{"id":"sf-abc"}`),
	}
}

// ---------------- Kafka ----------------

func TestKafkaPublisher_UsesEventTopicAndKey(t *testing.T) {
	// Arrange
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, defaultTopic: "medialist", log: zap.NewNop()}

	// Act
	err := p.Publish(context.Background(), testEvent())

	// Assert
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "saved_filter", w.msgs[0].Topic)
	assert.Equal(t, "sf-abc", string(w.msgs[0].Key))

	var decoded sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "saved_filter.saved", decoded.Type)
}

func TestKafkaPublisher_DefaultTopic(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, defaultTopic: "medialist", log: zap.NewNop()}

	require.NoError(t, p.Publish(context.Background(), map[string]string{"hola": "mundo"}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "medialist", w.msgs[0].Topic)
	assert.Nil(t, w.msgs[0].Key)
}

func TestKafkaPublisher_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("kafka is down")}
	p := &KafkaPublisher{writer: w, defaultTopic: "medialist", log: zap.NewNop()}

	err := p.Publish(context.Background(), testEvent())

	assert.EqualError(t, err, "kafka is down")
}

// ---------------- NATS ----------------

func TestNATSPublisher_Subject(t *testing.T) {
	conn := &fakeNATS{}
	p := &NATSPublisher{conn: conn, prefix: "medialist.", log: zap.NewNop()}

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	require.NoError(t, p.Publish(context.Background(), struct{}{}))
	require.NoError(t, p.Close())

	assert.Equal(t, []string{"medialist.saved_filter", "medialist.events"}, conn.subjects)
	assert.True(t, conn.closed)
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	conn := &fakeNATS{}
	p := &NATSPublisher{conn: conn, prefix: "", log: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, testEvent())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.subjects)
}

// ---------------- In-memory ----------------

func TestInMemoryEventBus_FanOut(t *testing.T) {
	bus := NewInMemoryEventBus()
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)

	require.NoError(t, bus.Publish(context.Background(), testEvent()))

	for _, ch := range []<-chan []byte{a, b} {
		var got sharedEvents.IntegrationEvent
		require.NoError(t, json.Unmarshal(<-ch, &got))
		assert.Equal(t, "sf-abc", got.Key)
	}
}

func TestInMemoryEventBus_DropsWhenFull(t *testing.T) {
	bus := NewInMemoryEventBus()
	ch := bus.Subscribe(1)

	require.NoError(t, bus.Publish(context.Background(), "uno"))
	require.NoError(t, bus.Publish(context.Background(), "dos"))

	assert.Equal(t, `"uno"`, string(<-ch))
	assert.Len(t, ch, 0)
}

func TestInMemoryEventBus_Close(t *testing.T) {
	bus := NewInMemoryEventBus()
	ch := bus.Subscribe(1)

	bus.Close()
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, bus.Publish(context.Background(), "tarde"))
}

// ---------------- Consumidores ----------------

func TestConsumeChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInMemoryEventBus()
	handler := newRecordingHandler(2)
	ConsumeChannel(ctx, bus.Subscribe(4), handler, zap.NewNop())

	require.NoError(t, bus.Publish(ctx, "a"))
	require.NoError(t, bus.Publish(ctx, "b"))
	handler.wait(t, 2)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, [][]byte{[]byte(`"a"`), []byte(`"b"`)}, handler.msgs)
}

func TestConsumerAdapter_DeliversUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{msgs: make(chan kafka.Message, 1)}
	handler := newRecordingHandler(1)
	adapter := &ConsumerAdapter{reader: reader, handler: handler, log: zap.NewNop()}

	adapter.Start(ctx)
	reader.msgs <- kafka.Message{Key: []byte("sf-1"), Value: []byte(`{}`)}
	handler.wait(t, 1)
	cancel()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []string{"sf-1"}, handler.keys)
}

func TestConsumeNATS(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := &fakeSubscriber{}
	handler := newRecordingHandler(1)

	require.NoError(t, ConsumeNATS(ctx, conn, "medialist.saved_filter", handler, zap.NewNop()))
	conn.cb(&nats.Msg{Subject: "medialist.saved_filter", Data: []byte(`{"type":"x"}`)})
	handler.wait(t, 1)

	assert.Equal(t, "medialist.saved_filter", conn.subject)
	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, [][]byte{[]byte(`{"type":"x"}`)}, handler.msgs)
}

func TestConsumeNATS_SubscribeFails(t *testing.T) {
	conn := &fakeSubscriber{err: errors.New("no servers")}

	err := ConsumeNATS(context.Background(), conn, "x", newRecordingHandler(1), zap.NewNop())

	assert.EqualError(t, err, "no servers")
}
