package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrInvalidToken indicates the access token was rejected by the server
	ErrInvalidToken = errors.New("invalid token")

	// ErrServerOffline indicates the music server is unreachable
	ErrServerOffline = errors.New("music server is unreachable")

	// ErrAlbumNotFound indicates the requested album does not exist
	ErrAlbumNotFound = errors.New("album not found")

	// ErrPlaybackBlocked indicates the player refused to start playback.
	// It is never fatal: a later user action may retry.
	ErrPlaybackBlocked = errors.New("playback blocked")

	// ErrIndexOutOfRange indicates a queue start index outside the track list
	ErrIndexOutOfRange = errors.New("track index out of range")
)
