// internal/queue/memory.go
package queue

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue with SQS-style redelivery semantics:
// a received message stays invisible for the configured visibility timeout
// and reappears unless deleted. Used in development and tests; not durable.
type MemoryQueue struct {
	mu                sync.Mutex
	messages          []*memoryMessage
	visibilityTimeout time.Duration
	nextHandle        int
}

type memoryMessage struct {
	body           string
	receiptHandle  string
	invisibleUntil time.Time
}

func NewMemoryQueue(visibilityTimeout time.Duration) *MemoryQueue {
	return &MemoryQueue{visibilityTimeout: visibilityTimeout}
}

func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, &memoryMessage{body: body})
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]Message, error) {
	deadline := time.Now().Add(wait)
	for {
		if msgs := q.receiveVisible(maxMessages); len(msgs) > 0 {
			return msgs, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (q *MemoryQueue) receiveVisible(maxMessages int) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	var out []Message
	for _, m := range q.messages {
		if len(out) >= maxMessages {
			break
		}
		if m.invisibleUntil.After(now) {
			continue
		}
		q.nextHandle++
		m.receiptHandle = strconv.Itoa(q.nextHandle)
		m.invisibleUntil = now.Add(q.visibilityTimeout)
		out = append(out, Message{Body: m.body, ReceiptHandle: m.receiptHandle})
	}
	return out
}

func (q *MemoryQueue) Delete(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, m := range q.messages {
		if m.receiptHandle == receiptHandle {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return nil
		}
	}
	// Deleting an already-expired handle is a no-op, matching SQS.
	return nil
}

// Len reports how many messages remain in the queue, visible or not.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
