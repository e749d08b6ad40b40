package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaylistLoads tracks playlist acquisitions by origin (cache, remote, bundle) and result
	PlaylistLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_playlist_loads_total",
		Help: "Total number of playlist acquisitions",
	}, []string{"origin", "result"})

	// PlaylistParseFailures tracks read failures while scanning a playlist
	PlaylistParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_playlist_parse_failures_total",
		Help: "Total number of playlist parse failures",
	})

	// ChannelsLoaded tracks the size of the current catalog
	ChannelsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_channels_loaded",
		Help: "Number of channels in the current catalog",
	})

	// Zaps tracks channel steps by direction
	Zaps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_zaps_total",
		Help: "Total number of zaps",
	}, []string{"direction"})

	// PlaybackEvents tracks sink notifications by state
	PlaybackEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_playback_events_total",
		Help: "Total number of playback state notifications",
	}, []string{"state"})

	// FavoriteToggles tracks favorite flips
	FavoriteToggles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_favorite_toggles_total",
		Help: "Total number of favorite toggles",
	})

	// CircuitBreakerState tracks the current state of circuit breakers
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_circuit_breaker_state",
		Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"source"})

	// CircuitBreakerTrips tracks how many times a circuit breaker transitioned to OPEN
	CircuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_circuit_breaker_trips_total",
		Help: "Total number of times circuit breaker transitioned to OPEN state",
	}, []string{"source"})
)

// RecordPlaylistLoad increments the acquisition counter
func RecordPlaylistLoad(origin string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	PlaylistLoads.WithLabelValues(origin, result).Inc()
}

// RecordParseFailure increments the parse failure counter
func RecordParseFailure() {
	PlaylistParseFailures.Inc()
}

// SetChannelsLoaded sets the catalog size
func SetChannelsLoaded(count int) {
	ChannelsLoaded.Set(float64(count))
}

// RecordZap increments the zap counter; direction is "next" or "previous"
func RecordZap(direction string) {
	Zaps.WithLabelValues(direction).Inc()
}

// RecordPlaybackEvent increments the playback event counter
func RecordPlaybackEvent(state string) {
	PlaybackEvents.WithLabelValues(state).Inc()
}

// RecordFavoriteToggle increments the favorite toggle counter
func RecordFavoriteToggle() {
	FavoriteToggles.Inc()
}

// SetCircuitBreakerState updates the circuit breaker state metric
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(source, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(source).Set(value)
}

// RecordCircuitBreakerTrip increments the circuit breaker trip counter
func RecordCircuitBreakerTrip(source string) {
	CircuitBreakerTrips.WithLabelValues(source).Inc()
}
