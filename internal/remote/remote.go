// Package remote maps remote-control keys to player actions.
package remote

import (
	"errors"
	"strings"
	"time"
)

// Key is a remote-control button.
type Key string

const (
	KeyCenter      Key = "center"
	KeyEnter       Key = "enter"
	KeyMenu        Key = "menu"
	KeyUp          Key = "up"
	KeyDown        Key = "down"
	KeyLeft        Key = "left"
	KeyRight       Key = "right"
	KeyChannelUp   Key = "channel_up"
	KeyChannelDown Key = "channel_down"
	KeyBack        Key = "back"
)

// ErrUnknownKey is returned by ParseKey.
var ErrUnknownKey = errors.New("unknown remote key")

var knownKeys = map[Key]bool{
	KeyCenter: true, KeyEnter: true, KeyMenu: true,
	KeyUp: true, KeyDown: true, KeyLeft: true, KeyRight: true,
	KeyChannelUp: true, KeyChannelDown: true, KeyBack: true,
}

// ParseKey accepts key names case-insensitively; dashes are read as underscores.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !knownKeys[k] {
		return "", ErrUnknownKey
	}
	return k, nil
}

// Action is what the player does in response to a key.
type Action int

const (
	ActionNone Action = iota
	ActionOpenBrowse
	ActionCloseBrowse
	ActionZapPrevious
	ActionZapNext
	ActionExitHint
	ActionExit
)

func (a Action) String() string {
	switch a {
	case ActionOpenBrowse:
		return "open_browse"
	case ActionCloseBrowse:
		return "close_browse"
	case ActionZapPrevious:
		return "zap_previous"
	case ActionZapNext:
		return "zap_next"
	case ActionExitHint:
		return "exit_hint"
	case ActionExit:
		return "exit"
	default:
		return "none"
	}
}

// Resolve maps a directional or confirm key while video is full screen.
// With the browse overlay open, keys belong to the presentation layer.
func Resolve(key Key, overlayOpen bool) Action {
	if overlayOpen {
		return ActionNone
	}

	switch key {
	case KeyCenter, KeyEnter, KeyMenu, KeyLeft, KeyRight:
		return ActionOpenBrowse
	case KeyUp, KeyChannelUp:
		return ActionZapPrevious
	case KeyDown, KeyChannelDown:
		return ActionZapNext
	default:
		return ActionNone
	}
}

// DefaultExitWindow is the maximum delay between two back presses that exit.
const DefaultExitWindow = 2 * time.Second

// BackHandler implements double-press-to-exit.
type BackHandler struct {
	Window    time.Duration
	lastPress time.Time
}

// NewBackHandler creates a BackHandler; a non-positive window uses DefaultExitWindow.
func NewBackHandler(window time.Duration) *BackHandler {
	if window <= 0 {
		window = DefaultExitWindow
	}
	return &BackHandler{Window: window}
}

// Press resolves a back press at now.
func (b *BackHandler) Press(now time.Time, overlayOpen, playing bool) Action {
	if !overlayOpen {
		return ActionOpenBrowse
	}
	if playing {
		return ActionCloseBrowse
	}

	if !b.lastPress.IsZero() && now.Sub(b.lastPress) < b.Window {
		b.lastPress = time.Time{}
		return ActionExit
	}
	b.lastPress = now
	return ActionExitHint
}
