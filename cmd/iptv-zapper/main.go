package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-zapper/internal/adapter/driven"
	"github.com/alorle/iptv-zapper/internal/adapter/driver"
	"github.com/alorle/iptv-zapper/internal/application"
	"github.com/alorle/iptv-zapper/internal/circuitbreaker"
	"github.com/alorle/iptv-zapper/internal/config"
	"github.com/alorle/iptv-zapper/internal/logging"
	"github.com/alorle/iptv-zapper/internal/m3u"
	ports "github.com/alorle/iptv-zapper/internal/port/driven"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	logger.Info("starting iptv-zapper",
		"address", net.JoinHostPort(cfg.HTTP.Address, cfg.HTTP.Port),
		"playlist_url", cfg.Playlist.URL,
		"cache_file", cfg.Playlist.CacheFile,
		"favorites_backend", cfg.Favorites.Backend,
		"player_command", cfg.Playback.Command,
		"log_level", cfg.Log.Level,
	)
	if cfg.Playlist.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for the playlist fetch",
			"url", cfg.Playlist.URL,
		)
	}

	favorites, closeFavorites, err := openFavorites(cfg)
	if err != nil {
		log.Fatalf("failed to open favorites store: %v", err)
	}
	defer closeFavorites()

	playlists, err := newPlaylistService(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create playlist service: %v", err)
	}

	sink, err := newPlaybackSink(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create playback sink: %v", err)
	}

	player := application.NewPlayerService(playlists, favorites, sink, application.PlayerConfig{
		FavoritesLabel: cfg.Favorites.Label,
		UserAgent:      cfg.Playback.UserAgent,
		ExitWindow:     cfg.Remote.ExitWindow,
		Logger:         logger,
	})
	if err := player.Start(context.Background()); err != nil {
		log.Fatalf("failed to start player: %v", err)
	}
	if _, err := player.Reload(context.Background(), false); err != nil {
		logger.Error("initial playlist load rejected", "error", err)
	}

	healthService := application.NewHealthService(favorites, player)

	swagger, err := driver.LoadOpenAPI()
	if err != nil {
		log.Fatalf("failed to load API description: %v", err)
	}

	apiHandler := driver.NewAPIHandler(
		driver.NewPlayerHTTPHandler(player),
		driver.NewHealthHTTPHandler(healthService),
		swagger,
	)

	// Root router: API under /api/, playlist export and metrics at root
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", http.StripPrefix("/api", apiHandler))
	rootMux.Handle("/playlist.m3u", driver.NewPlaylistHTTPHandler(player))
	rootMux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      logging.HTTPMiddleware(logger)(rootMux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown on signal or when the user exits from the remote
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received, shutting down gracefully")
	case <-player.Exited():
		logger.Info("exit requested, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := player.Stop(ctx); err != nil {
		logger.Error("player shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// openFavorites opens the configured favorites backend. The returned func
// releases it.
func openFavorites(cfg *config.Config) (ports.FavoriteRepository, func(), error) {
	switch cfg.Favorites.Backend {
	case config.BackendRedis:
		client, err := driven.NewRedisClient(cfg.Favorites.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		repo, err := driven.NewFavoriteRedisRepository(client)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := client.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}, nil

	case config.BackendBolt:
		db, err := bbolt.Open(cfg.Favorites.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			return nil, nil, err
		}
		repo, err := driven.NewFavoriteBoltDBRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() {
			if err := db.Close(); err != nil {
				slog.Error("error closing database", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown favorites backend %q", cfg.Favorites.Backend)
	}
}

func newPlaylistService(cfg *config.Config, logger *slog.Logger) (*application.PlaylistService, error) {
	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.Resilience.CBFailureThreshold,
		Timeout:          cfg.Resilience.CBTimeout,
		HalfOpenRequests: cfg.Resilience.CBHalfOpenRequests,
		Logger:           logger,
		Source:           driven.SourceRemote,
	})

	remote, err := driven.NewPlaylistHTTPSource(driven.PlaylistHTTPConfig{
		URL:                cfg.Playlist.URL,
		UserAgent:          cfg.Playlist.UserAgent,
		Timeout:            cfg.Playlist.FetchTimeout,
		MaxRedirects:       cfg.Playlist.MaxRedirects,
		InsecureSkipVerify: cfg.Playlist.InsecureSkipVerify,
		Breaker:            breaker,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}

	cache, err := driven.NewPlaylistFileCache(cfg.Playlist.CacheFile)
	if err != nil {
		return nil, err
	}

	// Interface values stay nil when no bundle is configured.
	var bundle ports.PlaylistSource
	if cfg.Playlist.BundlePath != "" {
		b, err := driven.NewPlaylistBundleSource(cfg.Playlist.BundlePath)
		if err != nil {
			return nil, err
		}
		bundle = b
	}

	parser := m3u.NewParser(cfg.Playlist.DefaultGroup)
	return application.NewPlaylistService(cache, remote, bundle, parser, logger), nil
}

func newPlaybackSink(cfg *config.Config, logger *slog.Logger) (ports.PlaybackSink, error) {
	if cfg.Playback.Command == "" {
		logger.Info("no player command configured, using headless playback sink")
		return driven.NewPlaybackNoopSink(), nil
	}
	return driven.NewPlaybackExecSink(driven.PlaybackExecConfig{
		Command: cfg.Playback.Command,
		Args:    cfg.Playback.Args,
		Logger:  logger,
	})
}
