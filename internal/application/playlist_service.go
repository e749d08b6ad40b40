package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/alorle/iptv-zapper/internal/channel"
	"github.com/alorle/iptv-zapper/internal/logging"
	"github.com/alorle/iptv-zapper/internal/m3u"
	"github.com/alorle/iptv-zapper/internal/metrics"
	"github.com/alorle/iptv-zapper/internal/port/driven"
)

// Playlist origins reported in LoadResult and metrics.
const (
	OriginCache  = "cache"
	OriginRemote = "remote"
	OriginBundle = "bundle"
)

var errNoSource = errors.New("no playlist source configured")

// LoadOptions tune a playlist load.
type LoadOptions struct {
	// Refresh skips a valid cache and goes to the network first.
	Refresh bool
}

// LoadResult is a parsed playlist and where it came from.
type LoadResult struct {
	Channels []channel.Channel
	Origin   string
}

// PlaylistService acquires and parses the playlist.
// It depends only on port interfaces.
type PlaylistService struct {
	cache  driven.PlaylistCache  // optional
	remote driven.PlaylistSource // optional
	bundle driven.PlaylistSource // optional
	parser *m3u.Parser
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// NewPlaylistService creates a PlaylistService. Any of cache, remote and
// bundle may be nil; at least one source must be given for loads to succeed.
func NewPlaylistService(cache driven.PlaylistCache, remote, bundle driven.PlaylistSource, parser *m3u.Parser, logger *slog.Logger) *PlaylistService {
	if parser == nil {
		parser = m3u.NewParser("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistService{
		cache:  cache,
		remote: remote,
		bundle: bundle,
		parser: parser,
		sem:    semaphore.NewWeighted(1),
		logger: logger,
	}
}

// Load acquires the playlist and parses it. Only one load runs at a time;
// a concurrent call fails fast with ErrLoadInProgress.
//
// Without Refresh the order is: valid cache, remote (written through to the
// cache), bundle. With Refresh the remote is tried first and a stale cache is
// still preferred over the bundle.
func (s *PlaylistService) Load(ctx context.Context, opts LoadOptions) (LoadResult, error) {
	if !s.sem.TryAcquire(1) {
		return LoadResult{}, ErrLoadInProgress
	}
	defer s.sem.Release(1)

	raw, origin, err := s.acquire(ctx, opts)
	if err != nil {
		s.logger.Error("playlist acquisition failed",
			"event", logging.EventPlaylistFailed,
			"error", err,
		)
		return LoadResult{}, acquisitionError(err)
	}

	channels, err := s.parse(raw)
	if err != nil {
		metrics.RecordParseFailure()
		s.logger.Error("playlist parse failed",
			"event", logging.EventPlaylistFailed,
			"origin", origin,
			"error", err,
		)
		return LoadResult{}, parseError(err)
	}

	metrics.SetChannelsLoaded(len(channels))
	s.logger.Info("playlist loaded",
		"event", logging.EventPlaylistLoaded,
		"origin", origin,
		"channels", len(channels),
	)

	return LoadResult{Channels: channels, Origin: origin}, nil
}

func (s *PlaylistService) acquire(ctx context.Context, opts LoadOptions) ([]byte, string, error) {
	var errs []error

	if !opts.Refresh {
		if raw, ok := s.fromCache(ctx); ok {
			return raw, OriginCache, nil
		}
	}

	if s.remote != nil {
		raw, err := s.remote.Fetch(ctx)
		metrics.RecordPlaylistLoad(OriginRemote, err)
		if err == nil {
			s.writeThrough(ctx, raw)
			return raw, OriginRemote, nil
		}
		s.logger.Warn("remote playlist fetch failed", "source", s.remote.Name(), "error", err)
		errs = append(errs, err)
	}

	if opts.Refresh {
		if raw, ok := s.fromCache(ctx); ok {
			return raw, OriginCache, nil
		}
	}

	if s.bundle != nil {
		raw, err := s.bundle.Fetch(ctx)
		metrics.RecordPlaylistLoad(OriginBundle, err)
		if err == nil {
			return raw, OriginBundle, nil
		}
		s.logger.Warn("bundled playlist unavailable", "source", s.bundle.Name(), "error", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, "", errNoSource
	}
	return nil, "", errors.Join(errs...)
}

func (s *PlaylistService) fromCache(ctx context.Context) ([]byte, bool) {
	if s.cache == nil || !s.cache.Valid(ctx) {
		return nil, false
	}

	raw, err := s.cache.Read(ctx)
	metrics.RecordPlaylistLoad(OriginCache, err)
	if err != nil {
		s.logger.Warn("playlist cache unreadable", "error", err)
		return nil, false
	}
	return raw, true
}

func (s *PlaylistService) writeThrough(ctx context.Context, raw []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Write(ctx, raw); err != nil {
		s.logger.Warn("failed to update playlist cache", "error", err)
	}
}

// parse decodes raw, which may be gzip, bzip2 or xz compressed.
func (s *PlaylistService) parse(raw []byte) ([]channel.Channel, error) {
	r, closeFn, err := m3u.Decompress(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return s.parser.Parse(r)
}
