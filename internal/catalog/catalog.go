// Package catalog indexes parsed channels by group and favorite status.
package catalog

import (
	"sort"
	"strings"

	"github.com/alorle/iptv-zapper/internal/channel"
)

// DefaultFavoritesLabel names the favorites pseudo-group.
const DefaultFavoritesLabel = "⭐ FAVORITES"

// Index is an immutable view over a channel list. It is rebuilt whenever the
// channel list or the favorite set changes.
type Index struct {
	channels       []channel.Channel
	groups         []string
	byGroup        map[string][]channel.Channel
	favorites      []channel.Channel
	favoritesLabel string
}

// Build derives groups and partitions from channels. isFavorite may be nil.
func Build(channels []channel.Channel, isFavorite func(url string) bool, favoritesLabel string) *Index {
	if favoritesLabel == "" {
		favoritesLabel = DefaultFavoritesLabel
	}

	idx := &Index{
		channels:       channels,
		byGroup:        make(map[string][]channel.Channel),
		favoritesLabel: favoritesLabel,
	}

	realGroups := []string{}
	for _, ch := range channels {
		if _, seen := idx.byGroup[ch.Group()]; !seen {
			realGroups = append(realGroups, ch.Group())
		}
		idx.byGroup[ch.Group()] = append(idx.byGroup[ch.Group()], ch)

		if isFavorite != nil && isFavorite(ch.URL()) {
			idx.favorites = append(idx.favorites, ch)
		}
	}
	sort.Strings(realGroups)

	idx.groups = make([]string, 0, len(realGroups)+1)
	if len(idx.favorites) > 0 {
		idx.groups = append(idx.groups, favoritesLabel)
	}
	idx.groups = append(idx.groups, realGroups...)

	return idx
}

// Empty returns an index without channels.
func Empty(favoritesLabel string) *Index {
	return Build(nil, nil, favoritesLabel)
}

// Channels returns the full channel list in playlist order.
func (i *Index) Channels() []channel.Channel {
	return i.channels
}

// Len returns the number of channels.
func (i *Index) Len() int {
	return len(i.channels)
}

// Groups returns the favorites label (when any favorite exists) followed by
// the distinct group labels in ascending order.
func (i *Index) Groups() []string {
	return i.groups
}

// FavoritesLabel returns the label of the favorites pseudo-group.
func (i *Index) FavoritesLabel() string {
	return i.favoritesLabel
}

// IsFavoritesLabel reports whether label names the favorites pseudo-group.
func (i *Index) IsFavoritesLabel(label string) bool {
	return label == i.favoritesLabel
}

// HasGroup reports whether label is listed by Groups.
func (i *Index) HasGroup(label string) bool {
	if i.IsFavoritesLabel(label) {
		return len(i.favorites) > 0
	}
	_, ok := i.byGroup[label]
	return ok
}

// Favorites returns the favorite channels in playlist order.
func (i *Index) Favorites() []channel.Channel {
	return i.favorites
}

// Partition returns the channels shown for label, preserving playlist order.
func (i *Index) Partition(label string) []channel.Channel {
	if i.IsFavoritesLabel(label) {
		return i.favorites
	}
	return i.byGroup[label]
}

// Search returns channels whose name contains term, ignoring case.
// An empty term yields nil.
func (i *Index) Search(term string) []channel.Channel {
	if term == "" {
		return nil
	}

	lower := strings.ToLower(term)
	matches := []channel.Channel{}
	for _, ch := range i.channels {
		if strings.Contains(strings.ToLower(ch.Name()), lower) {
			matches = append(matches, ch)
		}
	}
	return matches
}

// FindByURL returns the first channel with the given url.
func (i *Index) FindByURL(url string) (channel.Channel, bool) {
	if idx := channel.IndexOf(i.channels, url); idx >= 0 {
		return i.channels[idx], true
	}
	return channel.Channel{}, false
}
