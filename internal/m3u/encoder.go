package m3u

import (
	"fmt"
	"io"
	"strings"

	"github.com/alorle/iptv-zapper/internal/channel"
)

// Encoder writes entries as an extended M3U document.
type Encoder struct {
	epgUrls []string
	items   []*Entry
}

// NewEncoder creates an Encoder; guideUrls are announced in the header when set.
func NewEncoder(guideUrls []string) *Encoder {
	return &Encoder{epgUrls: guideUrls, items: []*Entry{}}
}

// AddEntry appends a raw entry.
func (p *Encoder) AddEntry(item *Entry) {
	p.items = append(p.items, item)
}

// AddChannel appends a channel.
func (p *Encoder) AddChannel(ch channel.Channel) {
	p.AddEntry(EntryFromChannel(ch))
}

// AddChannels appends channels in order.
func (p *Encoder) AddChannels(channels []channel.Channel) {
	for _, ch := range channels {
		p.AddChannel(ch)
	}
}

// Encode writes the document to w.
func (p *Encoder) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#EXTM3U"); err != nil {
		return err
	}

	if len(p.epgUrls) > 0 {
		if _, err := fmt.Fprintf(w, " url-tvg=\"%s\"", strings.Join(p.epgUrls, ",")); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	for _, item := range p.items {
		if err := item.encode(w); err != nil {
			return err
		}
	}

	return nil
}
