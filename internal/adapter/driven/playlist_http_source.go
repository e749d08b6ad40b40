package driven

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alorle/iptv-zapper/internal/circuitbreaker"
)

const (
	// SourceRemote identifies the network playlist in logs and metrics.
	SourceRemote = "remote"

	defaultFetchTimeout = 30 * time.Second
	defaultMaxRedirects = 10
	defaultUserAgent    = "VLC/3.0.18 LibVLC/3.0.18"

	// maxPlaylistSize bounds the response body read into memory.
	maxPlaylistSize = 64 << 20
)

// ErrUnexpectedStatus is returned when the playlist host answers with anything but 200.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// PlaylistHTTPConfig configures the remote playlist fetch.
type PlaylistHTTPConfig struct {
	URL                string
	UserAgent          string
	Timeout            time.Duration
	MaxRedirects       int // zero selects the default of 10
	InsecureSkipVerify bool
	Breaker            circuitbreaker.CircuitBreaker // optional
	Logger             *slog.Logger
}

// PlaylistHTTPSource implements the PlaylistSource port with a single GET to a fixed URL.
type PlaylistHTTPSource struct {
	url        string
	userAgent  string
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewPlaylistHTTPSource creates a new HTTP-based playlist source.
func NewPlaylistHTTPSource(cfg PlaylistHTTPConfig) (*PlaylistHTTPSource, error) {
	if cfg.URL == "" {
		return nil, errors.New("playlist URL cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		// Many playlist mirrors sit behind expired or self-signed certificates.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &PlaylistHTTPSource{
		url:        cfg.URL,
		userAgent:  cfg.UserAgent,
		httpClient: client,
		breaker:    cfg.Breaker,
		logger:     cfg.Logger,
	}, nil
}

// Name returns the source identifier.
func (s *PlaylistHTTPSource) Name() string {
	return SourceRemote
}

// Fetch downloads the playlist document. When a circuit breaker is configured
// and open, the request is not attempted.
func (s *PlaylistHTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.breaker == nil {
		return s.fetch(ctx)
	}

	var content []byte
	err := s.breaker.Execute(func() error {
		var fetchErr error
		content, fetchErr = s.fetch(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (s *PlaylistHTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist body: %w", err)
	}

	s.logger.Debug("playlist downloaded",
		"url", s.url,
		"bytes", len(content),
		"duration", time.Since(start),
	)

	return content, nil
}
