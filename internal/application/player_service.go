package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alorle/iptv-zapper/internal/catalog"
	"github.com/alorle/iptv-zapper/internal/channel"
	"github.com/alorle/iptv-zapper/internal/logging"
	"github.com/alorle/iptv-zapper/internal/metrics"
	"github.com/alorle/iptv-zapper/internal/navigation"
	"github.com/alorle/iptv-zapper/internal/playback"
	"github.com/alorle/iptv-zapper/internal/port/driven"
	"github.com/alorle/iptv-zapper/internal/remote"
)

// Status lines shown next to the player.
const (
	StatusUpdating      = "Updating..."
	StatusPlaylistError = "Playlist error"
	StatusConnecting    = "Connecting..."
	HintExit            = "Press back again to exit"
)

// PlaylistLoader is the acquisition use case consumed by PlayerService.
type PlaylistLoader interface {
	Load(ctx context.Context, opts LoadOptions) (LoadResult, error)
}

// PlayerConfig tunes a PlayerService.
type PlayerConfig struct {
	FavoritesLabel string
	UserAgent      string // sent by the sink when opening streams
	ExitWindow     time.Duration
	Logger         *slog.Logger
}

// ChannelView is a channel as presented to clients.
type ChannelView struct {
	Name     string
	URL      string
	Group    string
	Logo     string
	Favorite bool
}

// Snapshot is a consistent copy of the player state.
type Snapshot struct {
	Groups        []string
	CurrentGroup  string
	SearchTerm    string
	Visible       []ChannelView
	Current       *ChannelView
	Status        string
	PlaybackState playback.State
	OverlayOpen   bool
	Loaded        bool
	Loading       bool
	ChannelCount  int
	Hint          string
}

// playerState is owned by the service loop goroutine and never shared.
type playerState struct {
	nav           *navigation.State
	favorites     map[string]bool
	status        string
	hint          string
	overlay       bool
	session       playback.Session
	playbackState playback.State
	loaded        bool
	loading       bool
	back          *remote.BackHandler
}

type command func(ctx context.Context, st *playerState)

// PlayerService serializes every mutation of the navigation state, the
// favorites set and the playback session on one goroutine. Public methods
// post closures to that goroutine and wait for the reply; playback events
// and finished playlist loads are applied on the same goroutine.
type PlayerService struct {
	playlists PlaylistLoader
	favorites driven.FavoriteRepository
	sink      driven.PlaybackSink
	cfg       PlayerConfig
	logger    *slog.Logger
	now       func() time.Time

	cmds chan command
	done chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	runCtx    context.Context

	exitOnce sync.Once
	exited   chan struct{}
}

// NewPlayerService creates a PlayerService. Start must be called before use.
func NewPlayerService(playlists PlaylistLoader, favorites driven.FavoriteRepository, sink driven.PlaybackSink, cfg PlayerConfig) *PlayerService {
	if cfg.FavoritesLabel == "" {
		cfg.FavoritesLabel = catalog.DefaultFavoritesLabel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &PlayerService{
		playlists: playlists,
		favorites: favorites,
		sink:      sink,
		cfg:       cfg,
		logger:    cfg.Logger,
		now:       time.Now,
		cmds:      make(chan command),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
}

// Start loads the favorite set and starts the state loop. It does not load
// the playlist; call Reload for that.
func (s *PlayerService) Start(ctx context.Context) error {
	favorites, err := s.favorites.All(ctx)
	if err != nil {
		return err
	}

	s.startOnce.Do(func() {
		st := &playerState{
			nav:       navigation.New(catalog.Empty(s.cfg.FavoritesLabel)),
			favorites: favorites,
			overlay:   true,
			back:      remote.NewBackHandler(s.cfg.ExitWindow),
		}
		s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
		go s.run(st)
	})

	return nil
}

// Stop ends the state loop and stops playback.
func (s *PlayerService) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}

	var err error
	s.stopOnce.Do(func() {
		s.cancel()
		select {
		case <-s.done:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
		err = s.sink.Stop(ctx)
	})
	return err
}

// Exited is closed once the user confirms exit with a second back press.
func (s *PlayerService) Exited() <-chan struct{} {
	return s.exited
}

func (s *PlayerService) run(st *playerState) {
	defer close(s.done)

	events := s.sink.Events()
	for {
		select {
		case <-s.runCtx.Done():
			return
		case cmd := <-s.cmds:
			cmd(s.runCtx, st)
		case ev := <-events:
			s.applyEvent(st, ev)
		}
	}
}

// exec runs fn on the loop goroutine and waits for it to finish.
func (s *PlayerService) exec(ctx context.Context, fn func(ctx context.Context, st *playerState) error) error {
	if s.cancel == nil {
		return ErrNotRunning
	}

	reply := make(chan error, 1)
	cmd := func(_ context.Context, st *playerState) {
		reply <- fn(ctx, st)
	}

	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the command always runs to completion.
	return <-reply
}

// Snapshot returns a copy of the current state.
func (s *PlayerService) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.exec(ctx, func(_ context.Context, st *playerState) error {
		snap = st.snapshot()
		return nil
	})
	return snap, err
}

// Groups returns the group labels, favorites pseudo-group first when present.
func (s *PlayerService) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	err := s.exec(ctx, func(_ context.Context, st *playerState) error {
		groups = append([]string(nil), st.nav.Index().Groups()...)
		return nil
	})
	return groups, err
}

// Channels returns the channels of group, or every channel when group is empty.
func (s *PlayerService) Channels(ctx context.Context, group string) ([]channel.Channel, error) {
	var out []channel.Channel
	err := s.exec(ctx, func(_ context.Context, st *playerState) error {
		idx := st.nav.Index()
		if group == "" {
			out = append(out, idx.Channels()...)
			return nil
		}
		if !idx.HasGroup(group) && !idx.IsFavoritesLabel(group) {
			return ErrGroupNotFound
		}
		out = append(out, idx.Partition(group)...)
		return nil
	})
	return out, err
}

// Loaded reports whether a playlist has been loaded successfully.
func (s *PlayerService) Loaded(ctx context.Context) (bool, error) {
	var loaded bool
	err := s.exec(ctx, func(_ context.Context, st *playerState) error {
		loaded = st.loaded
		return nil
	})
	return loaded, err
}

// SelectGroup shows the channels of label and clears the search filter.
func (s *PlayerService) SelectGroup(ctx context.Context, label string) error {
	return s.exec(ctx, func(_ context.Context, st *playerState) error {
		idx := st.nav.Index()
		if !idx.HasGroup(label) && !idx.IsFavoritesLabel(label) {
			return ErrGroupNotFound
		}
		st.nav.SelectGroup(label)
		return nil
	})
}

// SetSearchTerm filters channels by name across all groups; an empty term
// restores the current group.
func (s *PlayerService) SetSearchTerm(ctx context.Context, term string) error {
	return s.exec(ctx, func(_ context.Context, st *playerState) error {
		st.nav.SetSearchTerm(term)
		return nil
	})
}

// Zap plays the previous or next visible channel. With nothing to zap
// through the browse overlay is opened and playback is left untouched.
func (s *PlayerService) Zap(ctx context.Context, d navigation.Direction) (ChannelView, error) {
	var view ChannelView
	err := s.exec(ctx, func(ctx context.Context, st *playerState) error {
		ch, err := s.zap(ctx, st, d)
		if err != nil {
			return err
		}
		view = st.view(ch)
		return nil
	})
	return view, err
}

// Play starts the channel identified by url.
func (s *PlayerService) Play(ctx context.Context, url string) (ChannelView, error) {
	var view ChannelView
	err := s.exec(ctx, func(ctx context.Context, st *playerState) error {
		ch, ok := st.nav.Index().FindByURL(url)
		if !ok {
			return channel.ErrChannelNotFound
		}
		if err := s.play(ctx, st, ch); err != nil {
			return err
		}
		view = st.view(ch)
		return nil
	})
	return view, err
}

// ToggleFavorite flips the favorite flag of the channel identified by url,
// persists it and rebuilds the catalog. It returns the new flag.
func (s *PlayerService) ToggleFavorite(ctx context.Context, url string) (bool, error) {
	var on bool
	err := s.exec(ctx, func(ctx context.Context, st *playerState) error {
		ch, ok := st.nav.Index().FindByURL(url)
		if !ok {
			return channel.ErrChannelNotFound
		}

		var err error
		on, err = s.favorites.Toggle(ctx, url)
		if err != nil {
			return err
		}

		if on {
			st.favorites[url] = true
		} else {
			delete(st.favorites, url)
		}
		metrics.RecordFavoriteToggle()

		affected := st.nav.AffectedBy(ch)
		st.rebuild(st.nav.Index().Channels(), s.cfg.FavoritesLabel)

		s.logger.Info("favorite toggled",
			"event", logging.EventFavoriteToggled,
			"url", url,
			"favorite", on,
			"visible_changed", affected,
		)
		return nil
	})
	return on, err
}

// HandleKey applies a remote-control key and returns the resulting action.
func (s *PlayerService) HandleKey(ctx context.Context, key remote.Key) (remote.Action, error) {
	if key == remote.KeyBack {
		return s.Back(ctx)
	}

	var action remote.Action
	err := s.exec(ctx, func(ctx context.Context, st *playerState) error {
		action = remote.Resolve(key, st.overlay)
		switch action {
		case remote.ActionOpenBrowse:
			st.overlay = true
		case remote.ActionZapPrevious:
			_, err := s.zap(ctx, st, navigation.Previous)
			return ignoreEmptyList(err)
		case remote.ActionZapNext:
			_, err := s.zap(ctx, st, navigation.Next)
			return ignoreEmptyList(err)
		}
		return nil
	})
	return action, err
}

// Back handles the back key: it opens the overlay, dismisses it while a
// stream plays, or exits on a second press within the exit window.
func (s *PlayerService) Back(ctx context.Context) (remote.Action, error) {
	var action remote.Action
	err := s.exec(ctx, func(_ context.Context, st *playerState) error {
		action = st.back.Press(s.now(), st.overlay, st.playing())
		st.hint = ""
		switch action {
		case remote.ActionOpenBrowse:
			st.overlay = true
		case remote.ActionCloseBrowse:
			st.overlay = false
		case remote.ActionExitHint:
			st.hint = HintExit
		case remote.ActionExit:
			s.exitOnce.Do(func() {
				s.logger.Info("exit requested from remote")
				close(s.exited)
			})
		}
		return nil
	})
	return action, err
}

// Reload acquires the playlist on a background worker. The returned channel
// yields the outcome once the new catalog has been applied.
func (s *PlayerService) Reload(ctx context.Context, refresh bool) (<-chan error, error) {
	result := make(chan error, 1)

	err := s.exec(ctx, func(_ context.Context, st *playerState) error {
		if st.loading {
			return ErrLoadInProgress
		}
		st.loading = true
		st.status = StatusUpdating

		go s.load(refresh, result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// load runs off the loop and posts the result back to it.
func (s *PlayerService) load(refresh bool, result chan<- error) {
	res, loadErr := s.playlists.Load(s.runCtx, LoadOptions{Refresh: refresh})

	apply := func(_ context.Context, st *playerState) {
		st.loading = false

		switch {
		case loadErr == nil:
			st.rebuild(res.Channels, s.cfg.FavoritesLabel)
			st.loaded = true
			st.status = ""
			if !st.playing() {
				st.overlay = true
			}
		case errors.Is(loadErr, ErrParse):
			// Channels parsed before the failure are discarded.
			st.rebuild(nil, s.cfg.FavoritesLabel)
			st.loaded = false
			st.status = StatusPlaylistError
		default:
			st.status = StatusPlaylistError
		}

		result <- loadErr
	}

	select {
	case s.cmds <- apply:
	case <-s.done:
		result <- ErrNotRunning
	}
}

// zap resolves and plays the neighbour of the current channel.
func (s *PlayerService) zap(ctx context.Context, st *playerState, d navigation.Direction) (channel.Channel, error) {
	target, err := st.nav.Zap(d)
	if err != nil {
		if errors.Is(err, navigation.ErrNoVisibleChannels) {
			st.overlay = true
		}
		return channel.Channel{}, err
	}

	dir := "next"
	if d == navigation.Previous {
		dir = "previous"
	}
	metrics.RecordZap(dir)

	if err := s.play(ctx, st, target); err != nil {
		return channel.Channel{}, err
	}
	return target, nil
}

func (s *PlayerService) play(ctx context.Context, st *playerState, ch channel.Channel) error {
	if err := st.nav.Play(ch); err != nil {
		return err
	}

	st.session = playback.NewSession(ch.URL(), s.cfg.UserAgent)
	st.playbackState = playback.StateBuffering
	st.status = StatusConnecting
	st.overlay = false
	st.hint = ""

	if err := s.sink.Load(ctx, st.session); err != nil {
		st.playbackState = playback.StateError
		st.status = playback.StatusText(playback.StateError, err)
		st.overlay = true
		s.logger.Error("failed to load stream",
			"event", logging.EventPlaybackFailed,
			"session_id", st.session.ID,
			"url", ch.URL(),
			"error", err,
		)
		return playbackError(err)
	}

	s.logger.Info("playing channel", "name", ch.Name(), "url", ch.URL(), "session_id", st.session.ID)
	return nil
}

// applyEvent folds a sink notification into the state. Events of superseded
// sessions are ignored.
func (s *PlayerService) applyEvent(st *playerState, ev playback.Event) {
	if ev.SessionID != st.session.ID {
		return
	}

	metrics.RecordPlaybackEvent(ev.State.String())
	st.playbackState = ev.State
	st.status = playback.StatusText(ev.State, ev.Err)

	if ev.State == playback.StateError {
		st.overlay = true
		s.logger.Warn("playback failed",
			"event", logging.EventPlaybackFailed,
			"session_id", ev.SessionID,
			"error", ev.Err,
		)
	}
}

func ignoreEmptyList(err error) error {
	if errors.Is(err, navigation.ErrNoVisibleChannels) {
		return nil
	}
	return err
}

// rebuild replaces the catalog, keeping the current group when it still exists.
func (st *playerState) rebuild(channels []channel.Channel, favoritesLabel string) {
	favs := st.favorites
	idx := catalog.Build(channels, func(url string) bool { return favs[url] }, favoritesLabel)

	group := st.nav.CurrentGroup()
	st.nav.SetIndex(idx)
	if group != "" && !idx.HasGroup(group) && !idx.IsFavoritesLabel(group) {
		if groups := idx.Groups(); len(groups) > 0 {
			st.nav.SelectGroup(groups[0])
		}
	}
}

func (st *playerState) playing() bool {
	return st.playbackState == playback.StateBuffering || st.playbackState == playback.StateReady
}

func (st *playerState) view(ch channel.Channel) ChannelView {
	return ChannelView{
		Name:     ch.Name(),
		URL:      ch.URL(),
		Group:    ch.Group(),
		Logo:     ch.Logo(),
		Favorite: st.favorites[ch.URL()],
	}
}

func (st *playerState) snapshot() Snapshot {
	visible := st.nav.Visible()
	views := make([]ChannelView, 0, len(visible))
	for _, ch := range visible {
		views = append(views, st.view(ch))
	}

	snap := Snapshot{
		Groups:        append([]string(nil), st.nav.Index().Groups()...),
		CurrentGroup:  st.nav.CurrentGroup(),
		SearchTerm:    st.nav.SearchTerm(),
		Visible:       views,
		Status:        st.status,
		PlaybackState: st.playbackState,
		OverlayOpen:   st.overlay,
		Loaded:        st.loaded,
		Loading:       st.loading,
		ChannelCount:  st.nav.Index().Len(),
		Hint:          st.hint,
	}
	if cur, ok := st.nav.CurrentChannel(); ok {
		v := st.view(cur)
		snap.Current = &v
	}
	return snap
}
