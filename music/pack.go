package music

import (
	"fmt"

	"github.com/mnglab/mng"
)

// Pack compiles src and builds a bundle holding it and the waves it names,
// read with readWave in WaveID order.
func Pack(name, src string, readWave func(name string) (mng.Wave, error)) (*mng.Bundle, error) {
	s := newSession(0, &mng.NullDevice{}, DefaultResolution)
	if err := compile(s, src); err != nil {
		return nil, err
	}
	b := &mng.Bundle{Name: name, Script: src, Waves: make([]mng.Wave, s.waves.Len())}
	for i, wave := range s.waves.Names() {
		w, err := readWave(wave)
		if err != nil {
			return nil, fmt.Errorf("wave %v: %w", wave, err)
		}
		b.Waves[i] = w
	}
	return b, nil
}
