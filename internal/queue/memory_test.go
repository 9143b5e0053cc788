// internal/queue/memory_test.go
package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueSendReceiveDelete(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "first"))
	require.NoError(t, q.Send(ctx, "second"))
	assert.Equal(t, 2, q.Len())

	messages, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)

	require.NoError(t, q.Delete(ctx, messages[0].ReceiptHandle))
	assert.Equal(t, 1, q.Len())
}

func TestMemoryQueueVisibilityTimeout(t *testing.T) {
	q := NewMemoryQueue(30 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "payload"))

	first, err := q.Receive(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Hidden while the visibility window is open.
	hidden, err := q.Receive(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, hidden)

	// Redelivered with a fresh receipt handle once the window expires.
	redelivered, err := q.Receive(ctx, 1, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, redelivered, 1)
	assert.Equal(t, "payload", redelivered[0].Body)
	assert.NotEqual(t, first[0].ReceiptHandle, redelivered[0].ReceiptHandle)
}

func TestMemoryQueueDeleteExpiredHandleIsNoop(t *testing.T) {
	q := NewMemoryQueue(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "payload"))

	first, err := q.Receive(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	redelivered, err := q.Receive(ctx, 1, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, redelivered, 1)

	// The first handle was superseded by the redelivery.
	require.NoError(t, q.Delete(ctx, first[0].ReceiptHandle))
	assert.Equal(t, 1, q.Len())

	require.NoError(t, q.Delete(ctx, redelivered[0].ReceiptHandle))
	assert.Equal(t, 0, q.Len())
}

func TestMemoryQueueReceiveRespectsContext(t *testing.T) {
	q := NewMemoryQueue(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := q.Receive(ctx, 1, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	body, err := Envelope{ProductID: "abc", PromptID: "def", IsRawImage: true, Action: "create"}.Encode()
	require.NoError(t, err)

	env, err := DecodeEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, "abc", env.ProductID)
	assert.Equal(t, "def", env.PromptID)
	assert.True(t, env.IsRawImage)
	assert.Equal(t, "create", env.Action)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope("{not json")
	assert.Error(t, err)
}
