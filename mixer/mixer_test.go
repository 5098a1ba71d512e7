package mixer_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/mixer"
)

// constantWave returns a mono wave of frames samples at value.
func constantWave(frames int, value int16, sampleRate int) mng.Wave {
	data := make([]byte, 2*frames)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(value))
	}
	return mng.Wave{Channels: 1, SampleRate: sampleRate, Data: data}
}

func newMixer(t *testing.T, waves ...mng.Wave) *mixer.Mixer {
	t.Helper()
	m := mixer.New(1000)
	if err := m.LoadWaves(waves); err != nil {
		t.Fatalf("LoadWaves: %v", err)
	}
	return m
}

func TestMixConstantWave(t *testing.T) {
	m := newMixer(t, constantWave(100, 16384, 1000))
	if _, err := m.StartControlledSound(0, 0, 0, false); err != nil {
		t.Fatalf("StartControlledSound: %v", err)
	}
	buffer, err := mng.Fill(m, 10)
	if err != nil {
		t.Fatalf("ReadAudio: %v", err)
	}
	for i, frame := range buffer {
		if frame != [2]float32{0.5, 0.5} {
			t.Fatalf("frame %d = %v, want 0.5 on both channels", i, frame)
		}
	}
	if p := m.Peak(); p != 0.5 {
		t.Errorf("peak = %v, want 0.5", p)
	}
}

func TestPanAndVolume(t *testing.T) {
	m := newMixer(t, constantWave(100, 16384, 1000))
	h, err := m.StartControlledSound(0, mng.DeviceVolume(0.25), mng.MaxDevicePan, true)
	if err != nil {
		t.Fatalf("StartControlledSound: %v", err)
	}
	buffer, _ := mng.Fill(m, 4)
	want := float32(0.5) * mng.Gain(mng.DeviceVolume(0.25))
	if l, r := buffer[3][0], buffer[3][1]; l != 0 || math.Abs(float64(r-want)) > 1e-6 {
		t.Errorf("frame = %v, %v; want 0, %v", l, r, want)
	}
	m.UpdateControlledSound(h, 0, 0)
	buffer, _ = mng.Fill(m, 4)
	if last := buffer[3]; math.Abs(float64(last[0]-0.5)) > 1e-6 || math.Abs(float64(last[1]-0.5)) > 1e-6 {
		t.Errorf("after the update the ramp ends at %v, want 0.5 on both sides", last)
	}
}

func TestSoundsFinish(t *testing.T) {
	m := newMixer(t, constantWave(10, 1000, 1000))
	once, _ := m.StartControlledSound(0, 0, 0, false)
	loop, _ := m.StartControlledSound(0, 0, 0, true)
	mng.Fill(m, 16)
	if !m.FinishedControlledSound(once) {
		t.Error("a 10 frame sound has not finished after 16 frames")
	}
	if m.FinishedControlledSound(loop) {
		t.Error("a looped sound finished")
	}
	m.StopControlledSound(once, false)
	m.StopControlledSound(loop, true)
	if !m.FinishedControlledSound(loop) {
		t.Error("a released sound is not reported finished")
	}
	mng.Fill(m, 16)
	if n := m.Voices(); n != 0 {
		t.Errorf("%d voices left after release, want 0", n)
	}
	if !m.FinishedControlledSound(mng.Handle(99)) {
		t.Error("unknown handle is not finished")
	}
}

func TestResampling(t *testing.T) {
	m := newMixer(t, constantWave(10, 16384, 500))
	h, _ := m.StartControlledSound(0, 0, 0, false)
	mng.Fill(m, 19)
	if m.FinishedControlledSound(h) {
		t.Fatal("a 10 frame wave at half the output rate finished after 19 frames")
	}
	mng.Fill(m, 1)
	if !m.FinishedControlledSound(h) {
		t.Fatal("wave still playing after 20 frames")
	}
}

func TestBadRequests(t *testing.T) {
	m := newMixer(t, mng.Wave{Channels: 1, SampleRate: 1000})
	if _, err := m.StartControlledSound(3, 0, 0, false); !errors.Is(err, mixer.ErrNoWave) {
		t.Errorf("unknown wave: %v", err)
	}
	if _, err := m.StartControlledSound(0, 0, 0, true); err == nil {
		t.Error("looping an empty wave succeeded")
	}
	if err := m.LoadWaves([]mng.Wave{{Channels: 3, SampleRate: 1000}}); err == nil {
		t.Error("three channel wave accepted")
	}
}
