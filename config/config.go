// Package config holds the settings of the music player: defaults, then
// MNG_* environment variables, then an optional YAML file. Command-line
// flags are applied on top by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Player configures cmd/mng-play.
type Player struct {
	Bundles    string        `env:"MNG_BUNDLES" envDefault:"." yaml:"bundles"`
	Bundle     string        `env:"MNG_BUNDLE" yaml:"bundle"`
	Track      string        `env:"MNG_TRACK" yaml:"track"`
	Tick       time.Duration `env:"MNG_TICK" envDefault:"50ms" yaml:"tick"`
	SampleRate int           `env:"MNG_SAMPLE_RATE" envDefault:"22050" yaml:"sample_rate"`
	Buffer     time.Duration `env:"MNG_BUFFER" envDefault:"100ms" yaml:"buffer"`
	PCM16      bool          `env:"MNG_PCM16" yaml:"pcm16"`
	Volume     float64       `env:"MNG_VOLUME" envDefault:"1" yaml:"volume"`
	Database   string        `env:"MNG_DB" yaml:"database"`
	Slot       string        `env:"MNG_SLOT" envDefault:"auto" yaml:"slot"`
	Watch      bool          `env:"MNG_WATCH" yaml:"watch"`
	MIDI       MIDI          `envPrefix:"MNG_MIDI_" yaml:"midi"`
}

// MIDI maps control changes of an input port onto the mood and threat
// targets. An empty Port disables MIDI input.
type MIDI struct {
	Port     string `env:"PORT" yaml:"port"`
	MoodCC   int    `env:"MOOD_CC" envDefault:"1" yaml:"mood_cc"`
	ThreatCC int    `env:"THREAT_CC" envDefault:"2" yaml:"threat_cc"`
}

// Load reads the environment and then, if path is not empty, the YAML file
// at path. Keys present in the file override the environment.
func Load(path string) (Player, error) {
	var p Player
	if err := env.Parse(&p); err != nil {
		return p, fmt.Errorf("parse env: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse config %v: %w", path, err)
		}
	}
	return p, p.Validate()
}

func (p Player) Validate() error {
	var errs []error
	if p.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", p.Tick))
	}
	if p.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", p.SampleRate))
	}
	if p.Volume < 0 || p.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be within [0,1], got %v", p.Volume))
	}
	for _, cc := range []int{p.MIDI.MoodCC, p.MIDI.ThreatCC} {
		if cc < 0 || cc > 127 {
			errs = append(errs, fmt.Errorf("controller %d is not a MIDI controller number", cc))
		}
	}
	return errors.Join(errs...)
}
