package library

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/williamhaley/music-tui/internal/domain"
)

// Service orchestrates album fetches for the views.
type Service struct {
	repo   domain.LibraryRepository
	logger *slog.Logger
}

// NewService creates a new library service.
func NewService(repo domain.LibraryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// FetchAlbums returns every album visible to token, in server order.
func (s *Service) FetchAlbums(ctx context.Context, token string) ([]domain.Album, error) {
	albums, err := s.repo.GetAlbums(ctx, token)
	if err != nil {
		s.logger.Error("failed to fetch albums", "error", err)
		return nil, err
	}
	s.logger.Debug("fetched albums", "count", len(albums))
	return albums, nil
}

// FetchAlbum returns one album with its tracks in playback order.
func (s *Service) FetchAlbum(ctx context.Context, token, albumID string) (*domain.Album, error) {
	album, err := s.repo.GetAlbum(ctx, token, albumID)
	if err != nil {
		s.logger.Error("failed to fetch album", "error", err, "albumID", albumID)
		return nil, err
	}

	if numbered(album.Tracks) {
		slices.SortStableFunc(album.Tracks, func(a, b domain.Track) int {
			return cmp.Compare(a.TrackNumber, b.TrackNumber)
		})
	}

	s.logger.Debug("fetched album", "albumID", albumID, "tracks", len(album.Tracks))
	return album, nil
}

// numbered reports whether every track carries a track number.
// Partially numbered albums keep the server order.
func numbered(tracks []domain.Track) bool {
	if len(tracks) == 0 {
		return false
	}
	for _, t := range tracks {
		if t.TrackNumber <= 0 {
			return false
		}
	}
	return true
}
