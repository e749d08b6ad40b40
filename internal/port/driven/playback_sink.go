package driven

import (
	"context"

	"github.com/alorle/iptv-zapper/internal/playback"
)

// PlaybackSink renders a stream. State transitions arrive asynchronously on
// the Events channel, tagged with the session that caused them.
type PlaybackSink interface {
	// Load replaces whatever is playing with session.URL.
	Load(ctx context.Context, session playback.Session) error

	// Stop halts playback.
	Stop(ctx context.Context) error

	// Events delivers state notifications. The channel is never closed while
	// the sink is in use.
	Events() <-chan playback.Event
}
