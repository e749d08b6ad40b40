package playback

import (
	"errors"

	"github.com/google/uuid"
)

// State is reported by a playback sink while it loads and renders a stream.
type State int

const (
	StateIdle State = iota
	StateBuffering
	StateReady
	StateError
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrPlayerFailed is the generic cause attached to StateError events.
var ErrPlayerFailed = errors.New("player failed")

// Session identifies one play request. Events carry the session id so that
// late notifications about a previous stream can be told apart.
type Session struct {
	ID        string
	URL       string
	UserAgent string
}

// NewSession creates a session with a fresh id.
func NewSession(url, userAgent string) Session {
	return Session{
		ID:        uuid.NewString(),
		URL:       url,
		UserAgent: userAgent,
	}
}

// Event is an asynchronous notification from a sink.
type Event struct {
	SessionID string
	State     State
	Err       error
}

// StatusText renders the status line shown for a playback state.
func StatusText(state State, err error) string {
	switch state {
	case StateBuffering:
		return "Loading..."
	case StateReady:
		return "Live"
	case StateError:
		if err == nil {
			err = ErrPlayerFailed
		}
		return "Error: " + err.Error()
	default:
		return ""
	}
}
