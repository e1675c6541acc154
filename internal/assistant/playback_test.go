package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/tahcohcat/voicechat-web/internal/conversation"
)

func newTestPlayback(synth *fakeSynth, player *fakePlayer) (*Playback, *status, *noticeRecorder) {
	st := &status{}
	notices := &noticeRecorder{}
	return newPlayback(synth, player, st, notices), st, notices
}

func TestPlayRequiresTextAndVoice(t *testing.T) {
	synth := &fakeSynth{audio: []byte{1}}
	p, st, notices := newTestPlayback(synth, &fakePlayer{})

	for _, tc := range []struct{ text, voice string }{
		{"", "v1"},
		{"Hi there", ""},
	} {
		if err := p.Play(context.Background(), tc.text, tc.voice); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("Play(%q, %q): expected ErrConfiguration, got %v", tc.text, tc.voice, err)
		}
	}
	if synth.callCount() != 0 {
		t.Fatal("synthesis must not run without text and voice")
	}
	if st.get().Playing {
		t.Fatal("playing flag left set")
	}
	if !notices.has(LevelError) {
		t.Fatal("expected an error notice")
	}
}

func TestPlayEmptyAudio(t *testing.T) {
	player := &fakePlayer{}
	p, st, _ := newTestPlayback(&fakeSynth{audio: []byte{}}, player)

	err := p.Play(context.Background(), "Hi there", "v1")
	if !errors.Is(err, ErrSynthesisRequest) {
		t.Fatalf("expected ErrSynthesisRequest, got %v", err)
	}
	if len(player.acquired) != 0 || len(player.loaded) != 0 || player.playCount() != 0 {
		t.Fatalf("audio element touched after empty synthesis: %+v", player)
	}
	if st.get().Playing {
		t.Fatal("playing flag left set")
	}
}

func TestPlaySynthesisFailure(t *testing.T) {
	p, _, notices := newTestPlayback(&fakeSynth{err: errors.New("status 401")}, &fakePlayer{})

	if err := p.Play(context.Background(), "Hi there", "v1"); !errors.Is(err, ErrSynthesisRequest) {
		t.Fatalf("expected ErrSynthesisRequest, got %v", err)
	}
	if !notices.has(LevelError) {
		t.Fatal("expected an error notice")
	}
}

func TestPlayReleasesPreviousSource(t *testing.T) {
	player := &fakePlayer{}
	p, _, _ := newTestPlayback(&fakeSynth{audio: []byte{1, 2, 3}}, player)

	for i := 0; i < 2; i++ {
		if err := p.Play(context.Background(), "Hi there", "v1"); err != nil {
			t.Fatalf("Play #%d: %v", i, err)
		}
	}

	if len(player.acquired) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(player.acquired))
	}
	if !player.acquired[0].isReleased() {
		t.Fatal("expected first source to be released")
	}
	if player.acquired[1].isReleased() {
		t.Fatal("current source released while in use")
	}
	if player.loaded[1].URL() != player.acquired[1].URL() {
		t.Fatalf("loaded %q, want %q", player.loaded[1].URL(), player.acquired[1].URL())
	}
}

func TestPlayAutoplayBlocked(t *testing.T) {
	player := &fakePlayer{playErr: ErrAutoplayBlocked}
	p, st, notices := newTestPlayback(&fakeSynth{audio: []byte{1}}, player)

	err := p.Play(context.Background(), "Hi there", "v1")
	if !errors.Is(err, ErrAutoplayBlocked) {
		t.Fatalf("expected ErrAutoplayBlocked, got %v", err)
	}
	if len(player.loaded) != 1 {
		t.Fatal("expected source to stay loaded for a manual play")
	}
	if !notices.has(LevelWarning) || notices.has(LevelError) {
		t.Fatalf("expected a single warning, got %+v", notices.notices)
	}
	if st.get().Playing {
		t.Fatal("playing flag left set")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	player := &fakePlayer{}
	p, st, _ := newTestPlayback(&fakeSynth{audio: []byte{1}}, player)

	p.Stop()
	p.Stop()

	if player.pauses != 2 || player.rewinds != 2 {
		t.Fatalf("expected pause and rewind per stop, got %d/%d", player.pauses, player.rewinds)
	}
	if st.get().Playing {
		t.Fatal("playing flag set after stop")
	}
}

func TestRetryClearsPlaybackError(t *testing.T) {
	p, st, notices := newTestPlayback(&fakeSynth{audio: []byte{1}}, &fakePlayer{})
	st.update(func(f *Flags) { f.PlaybackError = true })

	in := conversation.Interaction{ID: "a1", Role: conversation.RoleAssistant, Type: conversation.TypeLLM, Content: "Hi there"}
	if err := p.Retry(context.Background(), in, "v1"); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if st.get().PlaybackError {
		t.Fatal("expected playback error flag to be cleared")
	}
	if !notices.has(LevelSuccess) {
		t.Fatal("expected a success notice")
	}
}

func TestRetryFailureKeepsPlaybackError(t *testing.T) {
	p, st, notices := newTestPlayback(&fakeSynth{err: errors.New("status 500")}, &fakePlayer{})
	st.update(func(f *Flags) { f.PlaybackError = true })

	in := conversation.Interaction{ID: "a1", Role: conversation.RoleAssistant, Type: conversation.TypeLLM, Content: "Hi there"}
	err := p.Retry(context.Background(), in, "v1")
	if !errors.Is(err, ErrRetry) || !errors.Is(err, ErrSynthesisRequest) {
		t.Fatalf("expected retry and synthesis errors, got %v", err)
	}
	if !st.get().PlaybackError {
		t.Fatal("playback error flag cleared after a failed retry")
	}
	if notices.has(LevelSuccess) {
		t.Fatal("unexpected success notice")
	}
}

func TestPlayWithoutSynthesizerOrPlayer(t *testing.T) {
	st := &status{}
	notices := &noticeRecorder{}
	p := newPlayback(nil, nil, st, notices)

	if err := p.Play(context.Background(), "Hi there", "v1"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !notices.has(LevelError) {
		t.Fatal("expected an error notice")
	}

	p.Stop()
	p.Close()
	if st.get().Playing {
		t.Fatal("playing flag set")
	}
}
