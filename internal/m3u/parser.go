package m3u

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/alorle/iptv-zapper/internal/channel"
)

const (
	// ExtInf is the marker that opens a metadata line.
	ExtInf = "#EXTINF"

	// DefaultName is used when a URL line appears before any named metadata line.
	DefaultName = "Unnamed"

	maxLineSize = 1024 * 1024
)

// ErrRead is wrapped by Parse when the underlying reader fails.
var ErrRead = errors.New("failed to read playlist")

var (
	groupTitleRe = regexp.MustCompile(`group-title="([^"]*)"`)
	tvgLogoRe    = regexp.MustCompile(`tvg-logo="([^"]*)"`)
)

// Parser converts playlist text into channels.
//
// Metadata lines accumulate into a pending record that is emitted when a URL
// line follows. Name and group carry over to later URL lines until the next
// metadata line overwrites them; the logo is reset after every emitted channel.
type Parser struct {
	DefaultGroup string
	DefaultName  string
}

// NewParser creates a Parser that assigns defaultGroup to entries without group-title.
func NewParser(defaultGroup string) *Parser {
	return &Parser{DefaultGroup: defaultGroup, DefaultName: DefaultName}
}

// pending holds the metadata waiting for its URL line.
type pending struct {
	name  string
	group string
	logo  string
}

func (p *pending) apply(line string, defaultGroup string) {
	if idx := strings.LastIndex(line, ","); idx >= 0 {
		p.name = strings.TrimSpace(line[idx+1:])
	}

	p.group = defaultGroup
	if m := groupTitleRe.FindStringSubmatch(line); m != nil {
		p.group = strings.TrimSpace(m[1])
	}

	p.logo = ""
	if m := tvgLogoRe.FindStringSubmatch(line); m != nil {
		p.logo = strings.TrimSpace(m[1])
	}
}

// Parse scans r line by line. It never fails on malformed content; only a
// read error is reported, in which case no channels are returned.
func (p *Parser) Parse(r io.Reader) ([]channel.Channel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	state := pending{name: p.DefaultName, group: p.DefaultGroup}
	channels := []channel.Channel{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ExtInf):
			state.apply(line, p.DefaultGroup)
		case strings.HasPrefix(line, "#"):
			continue
		default:
			ch, err := channel.NewChannel(state.name, line, state.group, state.logo)
			if err != nil {
				continue
			}
			channels = append(channels, ch)
			state.logo = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	return channels, nil
}

// ParseString is a convenience wrapper around Parse.
func (p *Parser) ParseString(text string) []channel.Channel {
	channels, _ := p.Parse(strings.NewReader(text))
	return channels
}
