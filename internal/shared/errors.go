package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrInvalidName      = fmt.Errorf("invalid playlist name")

	// Lookup errors, used by the CLI to report boolean store outcomes
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrPlaylistExists   = fmt.Errorf("playlist already exists")
	ErrPlaylistNotEmpty = fmt.Errorf("playlist is not empty")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
