// Package navigation tracks the active group, the active channel and the
// search filter, and resolves zapping targets.
//
// State is not safe for concurrent use; it is owned by a single goroutine.
package navigation

import (
	"errors"

	"github.com/alorle/iptv-zapper/internal/catalog"
	"github.com/alorle/iptv-zapper/internal/channel"
)

// Direction of a zap.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Domain errors
var (
	ErrNoVisibleChannels = errors.New("no channels to zap through")
	ErrInvalidDirection  = errors.New("zap direction must be +1 or -1")
)

// ParseDirection maps "next"/"+1"/"1" and "previous"/"prev"/"-1" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "next", "+1", "1", "down":
		return Next, nil
	case "previous", "prev", "-1", "up":
		return Previous, nil
	default:
		return 0, ErrInvalidDirection
	}
}

// State is the navigation state of one screen.
type State struct {
	index   *catalog.Index
	group   string
	current channel.Channel
	visible []channel.Channel
	search  string
}

// New creates a State over idx. A nil idx is treated as an empty catalog.
func New(idx *catalog.Index) *State {
	s := &State{}
	s.SetIndex(idx)
	return s
}

// Index returns the catalog currently navigated.
func (s *State) Index() *catalog.Index {
	return s.index
}

// CurrentGroup returns the selected group label, or an empty string.
func (s *State) CurrentGroup() string {
	return s.group
}

// CurrentChannel returns the last played channel.
func (s *State) CurrentChannel() (channel.Channel, bool) {
	return s.current, !s.current.IsZero()
}

// Visible returns the derived list shown to the user.
func (s *State) Visible() []channel.Channel {
	return s.visible
}

// SearchTerm returns the active search filter.
func (s *State) SearchTerm() string {
	return s.search
}

// SetIndex swaps the catalog. When no group is selected yet the first listed
// group is selected.
func (s *State) SetIndex(idx *catalog.Index) {
	if idx == nil {
		idx = catalog.Empty("")
	}
	s.index = idx

	if s.group == "" && len(idx.Groups()) > 0 {
		s.group = idx.Groups()[0]
	}
	s.Refresh()
}

// SelectGroup shows the partition for label and clears the search filter.
func (s *State) SelectGroup(label string) {
	s.group = label
	s.search = ""
	s.visible = s.index.Partition(label)
}

// SetSearchTerm filters the whole catalog by name. Clearing the term restores
// the partition of the current group.
func (s *State) SetSearchTerm(term string) {
	s.search = term
	s.Refresh()
}

// Refresh re-derives the visible list from the group and search filter.
func (s *State) Refresh() {
	if s.search != "" {
		s.visible = s.index.Search(s.search)
		return
	}
	s.visible = s.index.Partition(s.group)
}

// AffectedBy reports whether a favorite change on ch alters the visible partition.
func (s *State) AffectedBy(ch channel.Channel) bool {
	return s.index.IsFavoritesLabel(s.group) || s.group == ch.Group()
}

// Zap resolves the channel next to the current one in the visible list,
// wrapping around at both ends. When the current channel is not visible the
// first visible channel is returned. Zap does not change the current channel;
// callers follow it with Play.
func (s *State) Zap(d Direction) (channel.Channel, error) {
	if d != Next && d != Previous {
		return channel.Channel{}, ErrInvalidDirection
	}

	n := len(s.visible)
	if n == 0 {
		return channel.Channel{}, ErrNoVisibleChannels
	}

	i := -1
	if !s.current.IsZero() {
		i = channel.IndexOf(s.visible, s.current.URL())
	}
	if i < 0 {
		return s.visible[0], nil
	}

	return s.visible[(i+int(d)+n)%n], nil
}

// Play records ch as the current channel. ch must belong to the catalog.
func (s *State) Play(ch channel.Channel) error {
	if _, ok := s.index.FindByURL(ch.URL()); !ok {
		return channel.ErrChannelNotFound
	}
	s.current = ch
	return nil
}
