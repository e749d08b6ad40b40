package m3u

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alorle/iptv-zapper/internal/channel"
)

func TestEncoder_Encode(t *testing.T) {
	cnn, _ := channel.NewChannel("CNN", "http://a/1", "News", "x.png")
	bare, _ := channel.NewChannel("Bare", "http://a/2", "", "")

	enc := NewEncoder(nil)
	enc.AddChannels([]channel.Channel{cnn, bare})

	var buf bytes.Buffer
	if err := enc.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	want := "#EXTM3U\n" +
		"#EXTINF:-1 tvg-logo=\"x.png\" group-title=\"News\",CNN\nhttp://a/1\n" +
		"#EXTINF:-1,Bare\nhttp://a/2\n"
	if buf.String() != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestEncoder_GuideURLs(t *testing.T) {
	enc := NewEncoder([]string{"http://epg/1.xml", "http://epg/2.xml"})

	var buf bytes.Buffer
	if err := enc.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	if !strings.HasPrefix(buf.String(), `#EXTM3U url-tvg="http://epg/1.xml,http://epg/2.xml"`) {
		t.Errorf("unexpected header: %q", buf.String())
	}
}

func TestEncoder_OutputParsesBack(t *testing.T) {
	a, _ := channel.NewChannel("A", "http://a/1", "G1", "a.png")
	b, _ := channel.NewChannel("B", "http://a/2", "G2", "")

	enc := NewEncoder(nil)
	enc.AddChannels([]channel.Channel{a, b})

	var buf bytes.Buffer
	if err := enc.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	parsed := NewParser("Other").ParseString(buf.String())
	if len(parsed) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(parsed))
	}
	if parsed[0] != a || parsed[1] != b {
		t.Errorf("parsed channels differ: %+v", parsed)
	}
}
