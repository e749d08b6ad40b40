package application

import (
	"context"
	"sync"

	"github.com/alorle/iptv-zapper/internal/playback"
)

type mockPlaylistSource struct {
	name      string
	fetchFunc func(ctx context.Context) ([]byte, error)
	calls     int
}

func (m *mockPlaylistSource) Fetch(ctx context.Context) ([]byte, error) {
	m.calls++
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return nil, nil
}

func (m *mockPlaylistSource) Name() string {
	return m.name
}

type mockPlaylistCache struct {
	content   []byte
	readErr   error
	writeErr  error
	writes    int
	validFunc func() bool
}

func (m *mockPlaylistCache) Valid(ctx context.Context) bool {
	if m.validFunc != nil {
		return m.validFunc()
	}
	return len(m.content) > 0
}

func (m *mockPlaylistCache) Read(ctx context.Context) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.content, nil
}

func (m *mockPlaylistCache) Write(ctx context.Context, content []byte) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.content = content
	return nil
}

// mockFavoriteRepository keeps favorites in memory unless a func field overrides it.
type mockFavoriteRepository struct {
	mu         sync.Mutex
	set        map[string]bool
	allFunc    func(ctx context.Context) (map[string]bool, error)
	toggleFunc func(ctx context.Context, url string) (bool, error)
	pingFunc   func(ctx context.Context) error
}

func newMockFavoriteRepository(urls ...string) *mockFavoriteRepository {
	m := &mockFavoriteRepository{set: make(map[string]bool)}
	for _, u := range urls {
		m.set[u] = true
	}
	return m
}

func (m *mockFavoriteRepository) All(ctx context.Context) (map[string]bool, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.set))
	for k := range m.set {
		out[k] = true
	}
	return out, nil
}

func (m *mockFavoriteRepository) IsFavorite(ctx context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set[url], nil
}

func (m *mockFavoriteRepository) Toggle(ctx context.Context, url string) (bool, error) {
	if m.toggleFunc != nil {
		return m.toggleFunc(ctx, url)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set[url] {
		delete(m.set, url)
		return false, nil
	}
	m.set[url] = true
	return true, nil
}

func (m *mockFavoriteRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// mockPlaybackSink records loads; tests push events through emit.
type mockPlaybackSink struct {
	mu       sync.Mutex
	events   chan playback.Event
	loaded   []playback.Session
	stops    int
	loadFunc func(ctx context.Context, session playback.Session) error
}

func newMockPlaybackSink() *mockPlaybackSink {
	return &mockPlaybackSink{events: make(chan playback.Event, 16)}
}

func (m *mockPlaybackSink) Load(ctx context.Context, session playback.Session) error {
	m.mu.Lock()
	m.loaded = append(m.loaded, session)
	m.mu.Unlock()
	if m.loadFunc != nil {
		return m.loadFunc(ctx, session)
	}
	return nil
}

func (m *mockPlaybackSink) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockPlaybackSink) Events() <-chan playback.Event {
	return m.events
}

func (m *mockPlaybackSink) emit(ev playback.Event) {
	m.events <- ev
}

func (m *mockPlaybackSink) sessions() []playback.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]playback.Session(nil), m.loaded...)
}

func (m *mockPlaybackSink) lastSession() playback.Session {
	s := m.sessions()
	if len(s) == 0 {
		return playback.Session{}
	}
	return s[len(s)-1]
}

// mockPlaylistLoader returns a fixed result, optionally blocking until released.
type mockPlaylistLoader struct {
	mu      sync.Mutex
	result  LoadResult
	err     error
	release chan struct{}
	calls   int
}

func (m *mockPlaylistLoader) Load(ctx context.Context, opts LoadOptions) (LoadResult, error) {
	m.mu.Lock()
	m.calls++
	release := m.release
	res, err := m.result, m.err
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return LoadResult{}, ctx.Err()
		}
	}
	return res, err
}

type mockCatalogStatus struct {
	loaded bool
	err    error
}

func (m *mockCatalogStatus) Loaded(ctx context.Context) (bool, error) {
	return m.loaded, m.err
}
