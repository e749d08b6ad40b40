package driven

import (
	"context"
	"sync"

	"github.com/alorle/iptv-zapper/internal/playback"
)

// PlaybackNoopSink is a headless PlaybackSink. Every load is reported as
// buffering then ready; nothing is rendered.
type PlaybackNoopSink struct {
	events chan playback.Event

	mu      sync.Mutex
	current string
}

func NewPlaybackNoopSink() *PlaybackNoopSink {
	return &PlaybackNoopSink{events: make(chan playback.Event, eventBufferSize)}
}

func (s *PlaybackNoopSink) Events() <-chan playback.Event {
	return s.events
}

func (s *PlaybackNoopSink) Load(ctx context.Context, session playback.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = session.ID
	s.mu.Unlock()

	s.emit(playback.Event{SessionID: session.ID, State: playback.StateBuffering})
	s.emit(playback.Event{SessionID: session.ID, State: playback.StateReady})
	return nil
}

func (s *PlaybackNoopSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	id := s.current
	s.current = ""
	s.mu.Unlock()

	if id != "" {
		s.emit(playback.Event{SessionID: id, State: playback.StateIdle})
	}
	return nil
}

func (s *PlaybackNoopSink) emit(ev playback.Event) {
	select {
	case s.events <- ev:
	default:
	}
}
