package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/log"
)

type fakeRepo struct {
	albums []domain.Album
	album  *domain.Album
	err    error

	gotToken string
	gotID    string
}

func (f *fakeRepo) GetAlbums(ctx context.Context, token string) ([]domain.Album, error) {
	f.gotToken = token
	return f.albums, f.err
}

func (f *fakeRepo) GetAlbum(ctx context.Context, token, albumID string) (*domain.Album, error) {
	f.gotToken = token
	f.gotID = albumID
	return f.album, f.err
}

func TestFetchAlbums(t *testing.T) {
	repo := &fakeRepo{albums: []domain.Album{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}}}
	svc := NewService(repo, log.NullLogger())

	albums, err := svc.FetchAlbums(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, "tok", repo.gotToken)
	assert.Equal(t, []string{"b", "a"}, []string{albums[0].ID, albums[1].ID})
}

func TestFetchAlbums_Error(t *testing.T) {
	svc := NewService(&fakeRepo{err: domain.ErrServerOffline}, nil)

	albums, err := svc.FetchAlbums(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Nil(t, albums)
}

func TestFetchAlbum_TrackOrder(t *testing.T) {
	tests := []struct {
		name   string
		tracks []domain.Track
		want   []string
	}{
		{
			name: "numbered tracks are sorted",
			tracks: []domain.Track{
				{ID: "3", TrackNumber: 3},
				{ID: "1", TrackNumber: 1},
				{ID: "2", TrackNumber: 2},
			},
			want: []string{"1", "2", "3"},
		},
		{
			name: "partially numbered keep server order",
			tracks: []domain.Track{
				{ID: "x", TrackNumber: 0},
				{ID: "b", TrackNumber: 2},
				{ID: "a", TrackNumber: 1},
			},
			want: []string{"x", "b", "a"},
		},
		{
			name:   "empty album",
			tracks: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{album: &domain.Album{ID: "al", Tracks: tt.tracks}}
			svc := NewService(repo, log.NullLogger())

			album, err := svc.FetchAlbum(context.Background(), "tok", "al")
			require.NoError(t, err)
			assert.Equal(t, "al", repo.gotID)

			got := []string{}
			for _, tr := range album.Tracks {
				got = append(got, tr.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchAlbum_NotFound(t *testing.T) {
	svc := NewService(&fakeRepo{err: domain.ErrAlbumNotFound}, log.NullLogger())

	_, err := svc.FetchAlbum(context.Background(), "tok", "missing")
	assert.ErrorIs(t, err, domain.ErrAlbumNotFound)
}
