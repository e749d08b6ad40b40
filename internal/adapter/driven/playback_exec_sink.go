package driven

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/alorle/iptv-zapper/internal/playback"
)

const (
	// Placeholders substituted in player arguments.
	PlaceholderURL       = "{url}"
	PlaceholderUserAgent = "{user_agent}"

	eventBufferSize = 64
)

// PlaybackExecConfig configures the external player.
type PlaybackExecConfig struct {
	Command string
	Args    []string
	Logger  *slog.Logger
}

// playerProcess is one running instance of the external player.
type playerProcess struct {
	session playback.Session
	cmd     *exec.Cmd
	stopped bool // guarded by PlaybackExecSink.mu
	done    chan struct{}
}

// PlaybackExecSink implements the PlaybackSink port by launching an external
// player per stream. Loading a new stream stops the previous process first.
type PlaybackExecSink struct {
	command string
	args    []string
	logger  *slog.Logger
	events  chan playback.Event

	mu      sync.Mutex
	current *playerProcess
}

// NewPlaybackExecSink creates a sink that runs cfg.Command for every stream.
func NewPlaybackExecSink(cfg PlaybackExecConfig) (*PlaybackExecSink, error) {
	if cfg.Command == "" {
		return nil, errors.New("player command cannot be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	args := cfg.Args
	if len(args) == 0 {
		args = []string{PlaceholderURL}
	}

	return &PlaybackExecSink{
		command: cfg.Command,
		args:    args,
		logger:  cfg.Logger,
		events:  make(chan playback.Event, eventBufferSize),
	}, nil
}

func (s *PlaybackExecSink) Events() <-chan playback.Event {
	return s.events
}

// Load stops the running player and starts a new one for session.
func (s *PlaybackExecSink) Load(ctx context.Context, session playback.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Stop(ctx); err != nil {
		return err
	}

	s.emit(playback.Event{SessionID: session.ID, State: playback.StateBuffering})

	// The process outlives the request, so it is not bound to ctx.
	cmd := exec.Command(s.command, expandArgs(s.args, session)...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		startErr := fmt.Errorf("failed to start player: %w", err)
		s.emit(playback.Event{SessionID: session.ID, State: playback.StateError, Err: startErr})
		return startErr
	}

	proc := &playerProcess{session: session, cmd: cmd, done: make(chan struct{})}

	s.mu.Lock()
	s.current = proc
	s.mu.Unlock()

	s.logger.Info("player started",
		"session_id", session.ID,
		"url", session.URL,
		"pid", cmd.Process.Pid,
	)
	s.emit(playback.Event{SessionID: session.ID, State: playback.StateReady})

	go s.wait(proc)

	return nil
}

// wait reports how a player process ended. A process killed by Stop is not
// reported: its session is already superseded.
func (s *PlaybackExecSink) wait(proc *playerProcess) {
	err := proc.cmd.Wait()
	close(proc.done)

	s.mu.Lock()
	stopped := proc.stopped
	if s.current == proc {
		s.current = nil
	}
	s.mu.Unlock()

	if stopped {
		return
	}

	if err != nil {
		s.logger.Warn("player exited with error", "session_id", proc.session.ID, "error", err)
		s.emit(playback.Event{
			SessionID: proc.session.ID,
			State:     playback.StateError,
			Err:       fmt.Errorf("%w: %w", playback.ErrPlayerFailed, err),
		})
		return
	}

	s.emit(playback.Event{SessionID: proc.session.ID, State: playback.StateIdle})
}

// Stop kills the running player, if any, and waits for it to exit.
func (s *PlaybackExecSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	proc := s.current
	if proc == nil {
		s.mu.Unlock()
		return nil
	}
	proc.stopped = true
	s.current = nil
	s.mu.Unlock()

	if err := proc.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop player: %w", err)
	}

	select {
	case <-proc.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PlaybackExecSink) emit(ev playback.Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("playback event dropped", "session_id", ev.SessionID, "state", ev.State.String())
	}
}

func expandArgs(args []string, session playback.Session) []string {
	r := strings.NewReplacer(PlaceholderURL, session.URL, PlaceholderUserAgent, session.UserAgent)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}
