package m3u

import (
	"fmt"
	"io"

	"github.com/alorle/iptv-zapper/internal/channel"
)

// Entry is one encoded playlist item.
type Entry struct {
	Title    string
	URI      string
	Duration float64
	TVGTags  *TVGTags
}

// EntryFromChannel builds an Entry carrying the channel's group and logo.
func EntryFromChannel(ch channel.Channel) *Entry {
	return &Entry{
		Title:    ch.Name(),
		URI:      ch.URL(),
		Duration: -1,
		TVGTags: &TVGTags{
			Logo:       ch.Logo(),
			GroupTitle: ch.Group(),
		},
	}
}

func (e *Entry) encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s:%0.0f", ExtInf, e.Duration); err != nil {
		return err
	}

	if !e.TVGTags.empty() {
		if _, err := w.Write([]byte(" ")); err != nil {
			return err
		}

		if err := e.TVGTags.encode(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", e.Title, e.URI); err != nil {
		return err
	}

	return nil
}
