// internal/worker/result.go

// Package worker owns the queue-driven background loops: the image
// enrichment pipeline and the storefront catalog sync.
package worker

// Status classifies the outcome of handling one queue message.
type Status int

const (
	// StatusProcessed: the message did its work (or was a deliberate
	// no-op) and must be deleted.
	StatusProcessed Status = iota
	// StatusPermanentFailure: redelivery cannot fix this message; delete
	// it and log.
	StatusPermanentFailure
	// StatusTransientFailure: leave the message for broker redelivery.
	StatusTransientFailure
)

// Result is returned by handlers; the poll loop matches on it to decide
// delete-vs-leave instead of inspecting error types.
type Result struct {
	Status Status
	Err    error
}

func Processed() Result {
	return Result{Status: StatusProcessed}
}

func Permanent(err error) Result {
	return Result{Status: StatusPermanentFailure, Err: err}
}

func Transient(err error) Result {
	return Result{Status: StatusTransientFailure, Err: err}
}
