package events

import (
	"context"
	"io"
	"vtts-analysis/internal/domain"
)

// SliceSource replays an in-memory list of events.
type SliceSource struct {
	events []domain.Event
	next   int
}

func NewSliceSource(events []domain.Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) ReadEvent(ctx context.Context) (domain.Event, error) {
	if s.next >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.next]
	s.next++
	return ev, nil
}
