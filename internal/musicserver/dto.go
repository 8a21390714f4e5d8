package musicserver

// Response envelopes and payloads as served by the music server API.

// AlbumsResponse is the body of GET /api/albums
type AlbumsResponse struct {
	Data []AlbumDTO `json:"data"`
}

// AlbumResponse is the body of GET /api/albums/{id}
type AlbumResponse struct {
	Data *AlbumDTO `json:"data"`
}

// AlbumDTO is an album as encoded by the server
type AlbumDTO struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Tracks []*TrackDTO `json:"tracks"`
}

// TrackDTO is a track as encoded by the server
type TrackDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TrackNumber int    `json:"trackNumber"`
	Extension   string `json:"extension"`
}
