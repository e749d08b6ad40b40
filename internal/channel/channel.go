package channel

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyURL        = errors.New("channel url cannot be empty")
	ErrChannelNotFound = errors.New("channel not found")
)

// Channel represents a playable entry of a playlist.
// Channels are immutable; the stream URL is their identity.
type Channel struct {
	name  string
	url   string
	group string
	logo  string
}

// NewChannel creates a new Channel, trimming every field.
// Returns ErrEmptyURL if the url is empty or contains only whitespace.
func NewChannel(name, url, group, logo string) (Channel, error) {
	trimmedURL := strings.TrimSpace(url)
	if trimmedURL == "" {
		return Channel{}, ErrEmptyURL
	}
	return Channel{
		name:  strings.TrimSpace(name),
		url:   trimmedURL,
		group: strings.TrimSpace(group),
		logo:  strings.TrimSpace(logo),
	}, nil
}

// Name returns the display name.
func (c Channel) Name() string {
	return c.name
}

// URL returns the stream address.
func (c Channel) URL() string {
	return c.url
}

// Group returns the category label.
func (c Channel) Group() string {
	return c.group
}

// Logo returns the artwork address, or an empty string.
func (c Channel) Logo() string {
	return c.logo
}

// IsZero reports whether c is the zero Channel.
func (c Channel) IsZero() bool {
	return c.url == ""
}

// SameAs reports whether both channels point at the same stream.
func (c Channel) SameAs(other Channel) bool {
	return c.url == other.url
}

// WithGroup returns a copy of c moved to another group.
func (c Channel) WithGroup(group string) Channel {
	c.group = strings.TrimSpace(group)
	return c
}

// IndexOf returns the position of the first channel in list sharing url, or -1.
func IndexOf(list []Channel, url string) int {
	for i, ch := range list {
		if ch.url == url {
			return i
		}
	}
	return -1
}
