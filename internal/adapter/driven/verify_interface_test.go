package driven

import (
	port "github.com/alorle/iptv-zapper/internal/port/driven"
)

// Compile-time checks that the playlist adapters implement their ports
var _ port.PlaylistSource = (*PlaylistHTTPSource)(nil)
var _ port.PlaylistSource = (*PlaylistBundleSource)(nil)
var _ port.PlaylistCache = (*PlaylistFileCache)(nil)

// Compile-time checks that both favorites stores implement FavoriteRepository
var _ port.FavoriteRepository = (*FavoriteBoltDBRepository)(nil)
var _ port.FavoriteRepository = (*FavoriteRedisRepository)(nil)

// Compile-time checks that the playback sinks implement PlaybackSink
var _ port.PlaybackSink = (*PlaybackExecSink)(nil)
var _ port.PlaybackSink = (*PlaybackNoopSink)(nil)
