package music_test

import (
	"errors"
	"fmt"

	"github.com/mnglab/mng"
)

type (
	// recorder is a sound device that remembers every sound it was asked to
	// play. Sounds never finish on their own.
	recorder struct {
		sounds []*sound
		fail   bool
	}

	sound struct {
		wave    mng.WaveID
		volume  int
		pan     int
		looped  bool
		stopped bool
	}

	// memoryLoader serves bundles from a map.
	memoryLoader map[string]string
)

func (r *recorder) StartControlledSound(wave mng.WaveID, volume, pan int, looped bool) (mng.Handle, error) {
	if r.fail {
		return 0, errors.New("device busy")
	}
	r.sounds = append(r.sounds, &sound{wave: wave, volume: volume, pan: pan, looped: looped})
	return mng.Handle(len(r.sounds)), nil
}

func (r *recorder) UpdateControlledSound(h mng.Handle, volume, pan int) {
	s := r.sounds[h-1]
	s.volume, s.pan = volume, pan
}

func (r *recorder) StopControlledSound(h mng.Handle, fade bool) {
	r.sounds[h-1].stopped = true
}

func (r *recorder) FinishedControlledSound(h mng.Handle) bool {
	return r.sounds[h-1].stopped
}

func (r *recorder) live() []*sound {
	var ret []*sound
	for _, s := range r.sounds {
		if !s.stopped {
			ret = append(ret, s)
		}
	}
	return ret
}

func (l memoryLoader) Bundles() ([]string, error) {
	var ret []string
	for name := range l {
		ret = append(ret, name)
	}
	return ret, nil
}

func (l memoryLoader) LoadBundle(name string) (*mng.Bundle, error) {
	src, ok := l[name]
	if !ok {
		return nil, fmt.Errorf("no bundle %v", name)
	}
	return &mng.Bundle{Name: name, Script: src}, nil
}
