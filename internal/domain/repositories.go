package domain

import "context"

// LibraryRepository provides access to albums and their tracks.
// Every call carries the access token of the current session.
type LibraryRepository interface {
	// GetAlbums returns all albums in server order
	GetAlbums(ctx context.Context, token string) ([]Album, error)

	// GetAlbum returns a single album with its tracks
	GetAlbum(ctx context.Context, token, albumID string) (*Album, error)
}

// AuthRepository validates access tokens against the server
type AuthRepository interface {
	// CheckAuth returns nil when the server accepts the token
	CheckAuth(ctx context.Context, token string) error
}
