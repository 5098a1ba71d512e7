package music_test

import (
	"math"
	"testing"

	"github.com/mnglab/mng/music"
)

const epsilon = 1e-9

func loadTrack(t *testing.T, src, name string) (*music.Manager, *music.Track) {
	t.Helper()
	m := music.NewManager(&recorder{})
	m.SetSeed(1)
	if err := m.LoadScript("test", src); err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	track, ok := m.Track(name)
	if !ok {
		t.Fatalf("no track %q", name)
	}
	return m, track
}

func TestFadeIn(t *testing.T) {
	_, track := loadTrack(t, `Track("T"){ FadeIn(2.0) }`, "T")
	track.Start(0)
	if track.Status() != music.FadingIn {
		t.Fatalf("status after start = %v, want FadingIn", track.Status())
	}
	if m := track.FadeMultiplier(1); math.Abs(m-0.5) > epsilon {
		t.Errorf("multiplier at 1s = %v, want 0.5", m)
	}
	track.Update(1, 1)
	if track.Status() != music.FadingIn {
		t.Errorf("status at 1s = %v, want FadingIn", track.Status())
	}
	if m := track.FadeMultiplier(2); m != 1 {
		t.Errorf("multiplier at 2s = %v, want exactly 1", m)
	}
	track.Update(2, 1)
	if track.Status() != music.Playing {
		t.Errorf("status at 2s = %v, want Playing", track.Status())
	}
}

func TestFadeOutCarriesFadeInProgress(t *testing.T) {
	_, track := loadTrack(t, `Track("T"){ FadeIn(2.0) FadeOut(5) }`, "T")
	track.Start(0)
	track.Update(0.6, 1)
	track.BeginFadingOut(0.6, 1.0)
	if track.Status() != music.FadingOut {
		t.Fatalf("status = %v, want FadingOut", track.Status())
	}
	if m := track.FadeMultiplier(0.6); math.Abs(m-0.3) > epsilon {
		t.Errorf("multiplier right after the request = %v, want 0.3", m)
	}
	track.Update(0.85, 1)
	if track.Status() != music.FadingOut {
		t.Errorf("status at 0.85s = %v, want FadingOut", track.Status())
	}
	track.Update(0.95, 1)
	if track.Status() != music.Finished {
		t.Errorf("status at 0.95s = %v, want Finished", track.Status())
	}
}

func TestFadeOutWithoutDurationFinishes(t *testing.T) {
	_, track := loadTrack(t, `Track("T"){ }`, "T")
	track.Start(0)
	if track.Status() != music.Playing {
		t.Fatalf("status = %v, want Playing without a fade-in", track.Status())
	}
	track.BeginFadingOut(1, 0)
	if track.Status() != music.Finished {
		t.Errorf("status = %v, want Finished", track.Status())
	}
	if m := track.FadeMultiplier(1); m != 0 {
		t.Errorf("multiplier of a finished track = %v", m)
	}
}

func TestTempo(t *testing.T) {
	_, track := loadTrack(t, `Track("T"){ BeatLength(0.5) BarLength(4) }`, "T")
	track.Start(0)
	beats, bars := 0, 0
	for i := 0; i <= 16; i++ {
		track.Update(float64(i)*0.25, 1)
		if track.HasBeatOccurred() {
			beats++
		}
		if track.HasBarOccurred() {
			bars++
		}
	}
	if beats != 8 || track.BeatCount() != 8 {
		t.Errorf("beats = %d (BeatCount %d), want 8", beats, track.BeatCount())
	}
	if bars != 2 || track.BarCount() != 2 {
		t.Errorf("bars = %d (BarCount %d), want 2", bars, track.BarCount())
	}
	if track.CurrentBeat() != 0 {
		t.Errorf("CurrentBeat = %d, want 0 at a bar line", track.CurrentBeat())
	}
	if track.HasBeatOccurred() {
		t.Error("beat latch did not clear on read")
	}
}

func TestBeatLengthFromInitialise(t *testing.T) {
	_, track := loadTrack(t, `Track("T"){ Initialise{ BeatLength = 0.5 } }`, "T")
	track.Start(0)
	track.Update(0, 1)
	if n := track.BeatCount(); n != 0 {
		t.Errorf("BeatCount at start = %d, want 0", n)
	}
	track.Update(0.5, 1)
	if n := track.BeatCount(); n != 1 {
		t.Errorf("BeatCount after one beat length = %d, want 1", n)
	}
}

func TestTrackVariablesResetOnStart(t *testing.T) {
	_, track := loadTrack(t, `Track("T"){ Variable(n, 2) Update{ n = Add(n, 1) } }`, "T")
	for round := 0; round < 2; round++ {
		track.Start(float64(round))
		track.Update(float64(round), 1)
		track.Update(float64(round)+0.05, 1)
		if n, _ := track.Variables().Get("n"); n != 4 {
			t.Fatalf("round %d: n = %v, want 4", round, n)
		}
	}
}
