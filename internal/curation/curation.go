// Package curation reshapes playlists offline: keyword filtering and merging
// a live TV list with a movie/series list.
package curation

import (
	"regexp"
	"strings"

	"github.com/alorle/iptv-zapper/internal/channel"
)

const (
	LiveGroup   = "TV EN VIVO"
	MovieGroup  = "CINE"
	moviePrefix = "CINE: "
	seriePrefix = "SERIE: "
)

// DefaultLiveKeywords mark entries that belong to live TV.
var DefaultLiveKeywords = []string{"TV EN VIVO", "NOTICIAS", "DEPORTES", "24/7"}

var tvLikeWords = []string{"TV", "CANAL", "NOTICIAS", "DEPORTES", "VIVO"}

var episodeRe = regexp.MustCompile(`(?i)(.*?)\s+(S\d+|T\d+|E\d+|Cap\.|Ep\.|Temporada)`)

// FilterOut drops channels whose name or group contains any keyword, ignoring case.
func FilterOut(channels []channel.Channel, keywords []string) []channel.Channel {
	upper := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			upper = append(upper, strings.ToUpper(k))
		}
	}

	kept := []channel.Channel{}
	for _, ch := range channels {
		haystack := strings.ToUpper(ch.Group() + " " + ch.Name())
		if !containsAny(haystack, upper) {
			kept = append(kept, ch)
		}
	}
	return kept
}

// MergeStats summarises a Merge run.
type MergeStats struct {
	TV         int
	Cinema     int
	Duplicates int
	Series     int
}

// Total is the number of merged channels.
func (s MergeStats) Total() int {
	return s.TV + s.Cinema
}

// Merge appends cinema entries to the live TV list.
//
// TV entries without a group land in LiveGroup. Cinema entries that look like a
// TV channel already present in tv are dropped. Episodes are grouped per series
// under "SERIE: <name>"; the remaining movies are grouped under CINE.
func Merge(tv, cinema []channel.Channel) ([]channel.Channel, MergeStats) {
	var stats MergeStats
	merged := make([]channel.Channel, 0, len(tv)+len(cinema))
	tvNames := make(map[string]bool, len(tv))

	for _, ch := range tv {
		tvNames[strings.ToUpper(ch.Name())] = true
		if ch.Group() == "" {
			ch = ch.WithGroup(LiveGroup)
		}
		merged = append(merged, ch)
		stats.TV++
	}

	for _, ch := range cinema {
		upperName := strings.ToUpper(ch.Name())
		if containsAny(upperName, tvLikeWords) && tvNames[upperName] {
			stats.Duplicates++
			continue
		}

		if series, ok := SeriesName(ch.Name()); ok {
			ch = ch.WithGroup(seriePrefix + series)
			stats.Series++
		} else {
			ch = ch.WithGroup(movieGroup(ch.Group()))
		}

		merged = append(merged, ch)
		stats.Cinema++
	}

	return merged, stats
}

// SeriesName extracts the series title from an episode name such as
// "Dark S01E02" or "Los Simpson Temporada 3".
func SeriesName(name string) (string, bool) {
	m := episodeRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	series := strings.Trim(m[1], " -_")
	if series == "" {
		return "", false
	}
	return series, true
}

func movieGroup(group string) string {
	switch {
	case group == "":
		return MovieGroup
	case strings.HasPrefix(group, MovieGroup), strings.HasPrefix(group, "SERIE"):
		return group
	default:
		return moviePrefix + group
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
