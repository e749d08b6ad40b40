// Command playlist-tool curates playlists offline: it filters entries by
// keyword and merges a live TV list with a movie/series list.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alorle/iptv-zapper/internal/channel"
	"github.com/alorle/iptv-zapper/internal/curation"
	"github.com/alorle/iptv-zapper/internal/logging"
	"github.com/alorle/iptv-zapper/internal/m3u"
)

const usage = `usage: playlist-tool <command> [flags]

commands:
  filter  drop entries whose name or group contains a keyword
  merge   append a movie/series playlist to a live TV playlist
`

var errUsage = errors.New("invalid usage")

func main() {
	logger := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"), "text")
	if err := run(os.Args[1:], os.Stderr, logger); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			logger.Error("playlist-tool failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	switch args[0] {
	case "filter":
		return runFilter(args[1:], stderr, logger)
	case "merge":
		return runMerge(args[1:], stderr, logger)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

func runFilter(args []string, stderr io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input playlist (plain, gzip, bzip2 or xz)")
	out := fs.String("out", "", "output playlist")
	keywords := fs.String("keywords", strings.Join(curation.DefaultLiveKeywords, ","), "comma separated keywords to drop")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fmt.Fprintln(stderr, "filter requires -in and -out")
		return errUsage
	}

	channels, err := readPlaylist(*in)
	if err != nil {
		return err
	}

	kept := curation.FilterOut(channels, strings.Split(*keywords, ","))
	if err := writePlaylist(*out, kept); err != nil {
		return err
	}

	logger.Info("playlist filtered",
		"input", *in,
		"output", *out,
		"read", len(channels),
		"kept", len(kept),
		"dropped", len(channels)-len(kept),
	)
	return nil
}

func runMerge(args []string, stderr io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tvPath := fs.String("tv", "", "live TV playlist")
	cinemaPath := fs.String("cinema", "", "movie/series playlist")
	out := fs.String("out", "", "output playlist")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tvPath == "" || *cinemaPath == "" || *out == "" {
		fmt.Fprintln(stderr, "merge requires -tv, -cinema and -out")
		return errUsage
	}

	tv, err := readPlaylist(*tvPath)
	if err != nil {
		return err
	}
	cinema, err := readPlaylist(*cinemaPath)
	if err != nil {
		return err
	}

	merged, stats := curation.Merge(tv, cinema)
	if err := writePlaylist(*out, merged); err != nil {
		return err
	}

	logger.Info("playlists merged",
		"output", *out,
		"tv", stats.TV,
		"cinema", stats.Cinema,
		"series", stats.Series,
		"duplicates", stats.Duplicates,
		"total", stats.Total(),
	)
	return nil
}

// readPlaylist leaves groups empty when missing so that Merge can assign its own.
func readPlaylist(path string) ([]channel.Channel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist: %w", err)
	}
	defer f.Close()

	r, closeFn, err := m3u.Decompress(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer closeFn()

	channels, err := m3u.NewParser("").Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return channels, nil
}

// writePlaylist writes through a temporary file so that a failed run never
// leaves a truncated playlist behind.
func writePlaylist(path string, channels []channel.Channel) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".playlist-*.m3u")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := m3u.NewEncoder(nil)
	enc.AddChannels(channels)
	if err := enc.Encode(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode playlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
