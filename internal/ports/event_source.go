package ports

import (
	"context"
	"vtts-analysis/internal/domain"
)

// Contract for reading a finite, time-ordered stream of simulation events.
type EventSource interface {
	// Return the next event, or io.EOF once the stream is exhausted.
	ReadEvent(ctx context.Context) (domain.Event, error)
}
