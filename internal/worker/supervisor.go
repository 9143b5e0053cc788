// internal/worker/supervisor.go
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kivoa/catalog-backend/internal/queue"
)

// Handler processes one message from its queue. Handlers must be
// idempotent: the broker hides a received message from other consumers,
// but two distinct messages can still reference the same product.
type Handler interface {
	Name() string
	Queue() queue.Queue
	Handle(ctx context.Context, msg queue.Message) Result
}

// Supervisor owns the consumer loops. It is constructed once at startup
// and passed by reference; Start launches one goroutine per handler, Stop
// asks them to finish cooperatively, Join waits for them to exit.
type Supervisor struct {
	handlers    []Handler
	receiveWait time.Duration
	running     atomic.Bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewSupervisor(receiveWait time.Duration, handlers ...Handler) *Supervisor {
	return &Supervisor{
		handlers:    handlers,
		receiveWait: receiveWait,
	}
}

func (s *Supervisor) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, h := range s.handlers {
		s.wg.Add(1)
		go s.run(ctx, h)
	}
	logrus.WithField("workers", len(s.handlers)).Info("Worker supervisor started")
}

// Stop requests a cooperative shutdown. The cancellation only interrupts
// the blocking long-poll receive; an in-flight message always runs to
// completion, bounded by the broker's visibility timeout.
func (s *Supervisor) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Join blocks until every loop has exited.
func (s *Supervisor) Join() {
	s.wg.Wait()
}

func (s *Supervisor) run(ctx context.Context, h Handler) {
	defer s.wg.Done()

	log := logrus.WithField("worker", h.Name())
	log.Info("Worker loop started")

	for s.running.Load() {
		messages, err := h.Queue().Receive(ctx, 1, s.receiveWait)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.WithError(err).Error("Failed to receive messages")
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, msg := range messages {
			if !s.running.Load() {
				break
			}
			// The handler gets its own context so shutdown never
			// interrupts a message mid-flight.
			s.dispatch(context.Background(), h, msg, log)
		}
	}

	log.Info("Worker loop stopped")
}

// dispatch runs one message through the handler and acts on the tagged
// result. A message's failure never terminates the loop.
func (s *Supervisor) dispatch(ctx context.Context, h Handler, msg queue.Message, log *logrus.Entry) {
	result := h.Handle(ctx, msg)

	switch result.Status {
	case StatusProcessed:
		if err := h.Queue().Delete(ctx, msg.ReceiptHandle); err != nil {
			// The message will be redelivered; handlers are idempotent.
			log.WithError(err).Warn("Failed to delete processed message")
		}
	case StatusPermanentFailure:
		log.WithError(result.Err).Error("Permanent failure, dropping message")
		if err := h.Queue().Delete(ctx, msg.ReceiptHandle); err != nil {
			log.WithError(err).Warn("Failed to delete poisoned message")
		}
	case StatusTransientFailure:
		log.WithError(result.Err).Warn("Transient failure, message will be retried")
	}
}
