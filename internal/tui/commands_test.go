package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/playback"
	"github.com/williamhaley/music-tui/internal/session"
)

func TestWaitForEndedCmd(t *testing.T) {
	assert.Nil(t, WaitForEndedCmd(nil, 1))

	fired := domain.NewEndedSubscription()
	cmd := WaitForEndedCmd(fired, 3)
	fired.Fire()
	assert.Equal(t, TrackEndedMsg{Gen: 3}, cmd())

	cancelled := domain.NewEndedSubscription()
	cmd = WaitForEndedCmd(cancelled, 4)
	cancelled.Cancel()
	assert.Nil(t, cmd())
}

func TestPlayTracksCmd_UnlocksBeforeQueueing(t *testing.T) {
	p := &fakePlayer{}

	msg := PlayTracksCmd(p, testAlbum.ID, testAlbum.Tracks, 0)()

	calls, intents := p.history()
	assert.Equal(t, []string{"unlock", "dispatch"}, calls)
	assert.Equal(t, []playback.Intent{playback.QueueAndPlay{Tracks: testAlbum.Tracks, Index: 0}}, intents)
	assert.Equal(t, "7", msg.(PlaybackMsg).AlbumID)
}

func TestClearStatusCmd_CarriesSequence(t *testing.T) {
	msg := ClearStatusCmd(time.Millisecond, 5)()
	assert.Equal(t, ClearStatusMsg{Seq: 5}, msg)
}

func TestSigninCmd_ReportsError(t *testing.T) {
	s := &fakeSession{signinErr: domain.ErrInvalidToken}

	msg := SigninCmd(s, "nope")().(SigninDoneMsg)

	assert.ErrorIs(t, msg.Err, domain.ErrInvalidToken)
	assert.Equal(t, session.State{}, s.State())
}

func TestLoadAlbumCmd_CarriesGeneration(t *testing.T) {
	lib := &fakeLibrary{album: map[string]*domain.Album{"7": testAlbum}}

	msg := LoadAlbumCmd(t.Context(), lib, "tok", "7", 9)().(AlbumLoadedMsg)
	assert.Equal(t, uint64(9), msg.Gen)
	assert.Equal(t, "7", msg.AlbumID)
	assert.Same(t, testAlbum, msg.Album)

	msg = LoadAlbumCmd(t.Context(), lib, "tok", "missing", 10)().(AlbumLoadedMsg)
	assert.ErrorIs(t, msg.Err, domain.ErrAlbumNotFound)
}

func TestErrMsg_Error(t *testing.T) {
	assert.Equal(t, "load: boom", ErrMsg{Err: assertErr("boom"), Context: "load"}.Error())
	assert.Equal(t, "boom", ErrMsg{Err: assertErr("boom")}.Error())
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
