package application

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Every failure ends the operation in progress but leaves
// the player interactive; the user retries by repeating the action.
var (
	// ErrAcquisition means no playlist document could be obtained from any source.
	ErrAcquisition = errors.New("playlist acquisition failed")
	// ErrParse means the playlist document could not be read through.
	ErrParse = errors.New("playlist parse failed")
	// ErrPlayback means the playback sink rejected or failed a stream.
	ErrPlayback = errors.New("playback failed")
	// ErrLoadInProgress is returned when a playlist load is already running.
	ErrLoadInProgress = errors.New("playlist load already in progress")
	// ErrGroupNotFound is returned when selecting a group the catalog does not list.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNotRunning is returned by PlayerService calls made before Start or after Stop.
	ErrNotRunning = errors.New("player service is not running")
)

func acquisitionError(err error) error {
	return fmt.Errorf("%w: %w", ErrAcquisition, err)
}

func parseError(err error) error {
	return fmt.Errorf("%w: %w", ErrParse, err)
}

func playbackError(err error) error {
	return fmt.Errorf("%w: %w", ErrPlayback, err)
}
