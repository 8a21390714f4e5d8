package musicserver

import "github.com/williamhaley/music-tui/internal/domain"

// MapAlbums converts server albums to domain albums, preserving order
func MapAlbums(dtos []AlbumDTO) []domain.Album {
	albums := make([]domain.Album, 0, len(dtos))
	for i := range dtos {
		albums = append(albums, MapAlbum(&dtos[i]))
	}
	return albums
}

// MapAlbum converts a server album to a domain album
func MapAlbum(dto *AlbumDTO) domain.Album {
	album := domain.Album{
		ID:   dto.ID,
		Name: dto.Name,
	}
	if len(dto.Tracks) > 0 {
		album.Tracks = make([]domain.Track, 0, len(dto.Tracks))
	}
	for _, t := range dto.Tracks {
		if t == nil {
			continue
		}
		album.Tracks = append(album.Tracks, MapTrack(t))
	}
	return album
}

// MapTrack converts a server track to a domain track
func MapTrack(dto *TrackDTO) domain.Track {
	return domain.Track{
		ID:          dto.ID,
		Name:        dto.Name,
		Extension:   dto.Extension,
		TrackNumber: dto.TrackNumber,
	}
}
