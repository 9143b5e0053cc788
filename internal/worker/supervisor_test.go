// internal/worker/supervisor_test.go
package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivoa/catalog-backend/internal/queue"
)

type stubHandler struct {
	name    string
	queue   queue.Queue
	result  Result
	handled atomic.Int64
}

func (h *stubHandler) Name() string       { return h.name }
func (h *stubHandler) Queue() queue.Queue { return h.queue }

func (h *stubHandler) Handle(ctx context.Context, msg queue.Message) Result {
	h.handled.Add(1)
	return h.result
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSupervisorProcessesAndDeletes(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	require.NoError(t, q.Send(context.Background(), `{"product_id":"x"}`))

	handler := &stubHandler{name: "test", queue: q, result: Processed()}
	s := NewSupervisor(50*time.Millisecond, handler)
	s.Start()
	defer func() {
		s.Stop()
		s.Join()
	}()

	waitFor(t, 2*time.Second, func() bool {
		return handler.handled.Load() >= 1 && q.Len() == 0
	})
}

func TestSupervisorDropsPermanentFailures(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	require.NoError(t, q.Send(context.Background(), `{"product_id":"x"}`))

	handler := &stubHandler{name: "test", queue: q, result: Permanent(errors.New("poison"))}
	s := NewSupervisor(50*time.Millisecond, handler)
	s.Start()
	defer func() {
		s.Stop()
		s.Join()
	}()

	waitFor(t, 2*time.Second, func() bool {
		return handler.handled.Load() == 1 && q.Len() == 0
	})
}

func TestSupervisorLeavesTransientFailuresForRedelivery(t *testing.T) {
	// Short visibility timeout so the message comes back quickly.
	q := queue.NewMemoryQueue(20 * time.Millisecond)
	require.NoError(t, q.Send(context.Background(), `{"product_id":"x"}`))

	handler := &stubHandler{name: "test", queue: q, result: Transient(errors.New("flaky"))}
	s := NewSupervisor(50*time.Millisecond, handler)
	s.Start()
	defer func() {
		s.Stop()
		s.Join()
	}()

	waitFor(t, 2*time.Second, func() bool {
		return handler.handled.Load() >= 2
	})
	assert.Equal(t, 1, q.Len())
}

func TestSupervisorStopIsIdempotent(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	handler := &stubHandler{name: "test", queue: q, result: Processed()}

	s := NewSupervisor(10*time.Millisecond, handler)
	s.Start()
	s.Start() // second Start is a no-op

	s.Stop()
	s.Stop()
	s.Join()
}

func TestSupervisorStopUnblocksLongPoll(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	handler := &stubHandler{name: "test", queue: q, result: Processed()}

	// Receive wait far longer than the test; Stop must interrupt it.
	s := NewSupervisor(time.Hour, handler)
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Join()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop within timeout")
	}
}
