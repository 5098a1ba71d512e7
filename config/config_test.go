package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mnglab/mng/config"
)

func TestDefaults(t *testing.T) {
	p, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Tick != 50*time.Millisecond || p.SampleRate != 22050 || p.Volume != 1 || p.Slot != "auto" {
		t.Errorf("defaults = %+v", p)
	}
	if p.MIDI.MoodCC != 1 || p.MIDI.ThreatCC != 2 {
		t.Errorf("MIDI defaults = %+v", p.MIDI)
	}
}

func TestEnvironmentThenFile(t *testing.T) {
	t.Setenv("MNG_TRACK", "Calm")
	t.Setenv("MNG_VOLUME", "0.5")
	t.Setenv("MNG_MIDI_PORT", "nanoKONTROL")
	path := filepath.Join(t.TempDir(), "player.yml")
	if err := os.WriteFile(path, []byte("volume: 0.25\ntick: 20ms\nmidi:\n  threat_cc: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Track != "Calm" {
		t.Errorf("track = %q, want the environment's", p.Track)
	}
	if p.Volume != 0.25 || p.Tick != 20*time.Millisecond {
		t.Errorf("file did not override: volume %v tick %v", p.Volume, p.Tick)
	}
	if p.MIDI.Port != "nanoKONTROL" || p.MIDI.ThreatCC != 7 || p.MIDI.MoodCC != 1 {
		t.Errorf("midi = %+v", p.MIDI)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("MNG_VOLUME", "2")
	if _, err := config.Load(""); err == nil {
		t.Error("volume 2 accepted")
	}
	t.Setenv("MNG_VOLUME", "1")
	t.Setenv("MNG_SAMPLE_RATE", "zero")
	if _, err := config.Load(""); err == nil {
		t.Error("non-numeric sample rate accepted")
	}
}
