package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alorle/iptv-zapper/internal/application"
	"github.com/alorle/iptv-zapper/internal/logging"
	"github.com/alorle/iptv-zapper/internal/m3u"
	"github.com/alorle/iptv-zapper/internal/playback"
)

const testPlaylist = `#EXTM3U
#EXTINF:-1 group-title="News" tvg-logo="cnn.png",CNN HD
http://a/cnn
#EXTINF:-1 group-title="News",BBC World
http://a/bbc
#EXTINF:-1 group-title="Sports",ESPN
http://a/espn
#EXTINF:-1,No Group
http://a/nogroup
`

// mockPlaylistLoader returns a fixed result, optionally blocking until released.
type mockPlaylistLoader struct {
	mu      sync.Mutex
	result  application.LoadResult
	err     error
	release chan struct{}
}

func (m *mockPlaylistLoader) Load(ctx context.Context, opts application.LoadOptions) (application.LoadResult, error) {
	m.mu.Lock()
	release := m.release
	res, err := m.result, m.err
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return application.LoadResult{}, ctx.Err()
		}
	}
	return res, err
}

func (m *mockPlaylistLoader) block() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = make(chan struct{})
	return m.release
}

type mockFavoriteRepository struct {
	mu       sync.Mutex
	set      map[string]bool
	pingFunc func(ctx context.Context) error
}

func newMockFavoriteRepository() *mockFavoriteRepository {
	return &mockFavoriteRepository{set: make(map[string]bool)}
}

func (m *mockFavoriteRepository) All(ctx context.Context) (map[string]bool, error) {
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

type mockPlaybackSink struct {
	events   chan playback.Event
	loadFunc func(ctx context.Context, session playback.Session) error
}

func (m *mockPlaybackSink) Load(ctx context.Context, session playback.Session) error {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, session)
	}
	return nil
}

func (m *mockPlaybackSink) Stop(ctx context.Context) error {
	return nil
}

func (m *mockPlaybackSink) Events() <-chan playback.Event {
	return m.events
}

type playerFixture struct {
	loader *mockPlaylistLoader
	favs   *mockFavoriteRepository
	sink   *mockPlaybackSink
	svc    *application.PlayerService
}

// newPlayerFixture starts a player service. When load is true the test
// playlist is applied before returning.
func newPlayerFixture(t *testing.T, load bool) *playerFixture {
	t.Helper()

	f := &playerFixture{
		loader: &mockPlaylistLoader{result: application.LoadResult{
			Channels: m3u.NewParser("Other").ParseString(testPlaylist),
			Origin:   application.OriginRemote,
		}},
		favs: newMockFavoriteRepository(),
		sink: &mockPlaybackSink{events: make(chan playback.Event, 16)},
	}
	f.svc = application.NewPlayerService(f.loader, f.favs, f.sink, application.PlayerConfig{
		ExitWindow: 2 * time.Second,
		Logger:     logging.Discard(),
	})

	if err := f.svc.Start(context.Background()); err != nil {
		t.Fatalf("failed to start player: %v", err)
	}
	t.Cleanup(func() { _ = f.svc.Stop(context.Background()) })

	if !load {
		return f
	}

	result, err := f.svc.Reload(context.Background(), false)
	if err != nil {
		t.Fatalf("reload rejected: %v", err)
	}
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	return f
}
