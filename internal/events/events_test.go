package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, TopicOrders, "7", New(OrderPlaced, map[string]any{"order_id": 7})))
	require.NoError(t, r.Publish(ctx, TopicCart, "3", New(CartCleared, nil)))

	assert.Equal(t, []string{OrderPlaced, CartCleared}, r.Types())
	evs := r.Events()
	assert.Equal(t, TopicOrders, evs[0].Topic)
	assert.Equal(t, "7", evs[0].Key)
	assert.False(t, evs[0].Event.OccurredAt.IsZero())

	r.Err = errors.New("broker down")
	assert.Error(t, r.Publish(ctx, TopicCart, "3", New(CartCleared, nil)))
	assert.Len(t, r.Events(), 2)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), TopicUsers, "1", New(UserRegistered, nil)))
	assert.NoError(t, p.Close())
}

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "event_type", Value: []byte("x")}}}
	c := headerCarrier{msg: &msg}

	c.Set("traceparent", "00-abc-def-01")
	c.Set("event_type", "y")

	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, "y", c.Get("event_type"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"event_type", "traceparent"}, c.Keys())
}

func TestKafkaPublisher_FlushesEachWrite(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"})
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, 1, p.writer.BatchSize)
	assert.Equal(t, DefaultPublishTimeout, p.Timeout)
}

func TestKafkaPublisher_UnreachableBrokerIsBounded(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"})
	p.Timeout = 300 * time.Millisecond
	t.Cleanup(func() { _ = p.Close() })

	start := time.Now()
	err := p.Publish(context.Background(), TopicCart, "3", New(CartCleared, nil))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
