// Package mixer is a software sound device: it plays the 16-bit PCM waves
// of a bundle and mixes them into stereo float buffers.
package mixer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mnglab/mng"
	"github.com/viterin/vek/vek32"
)

type (
	// Mixer implements mng.SoundDevice and mng.WaveLoader. Sounds are
	// started, updated and stopped by the music engine while ReadAudio is
	// called from the audio output, so every method locks.
	Mixer struct {
		mu         sync.Mutex
		sampleRate int
		waves      []mng.Wave
		voices     map[mng.Handle]*voice
		next       mng.Handle
		peak       float32

		left, right []float32 // mix accumulators
		tmpL, tmpR  []float32
		ramp        []float32
	}

	voice struct {
		wave   mng.Wave
		frames int
		pos    float64
		step   float64
		looped bool
		// gains are ramped from cur to target over one buffer to avoid
		// clicks
		curL, curR       float32
		targetL, targetR float32
		release          bool
		done             bool
	}
)

// DefaultSampleRate is the output rate used when none is configured.
const DefaultSampleRate = 22050

var ErrNoWave = errors.New("no such wave")

func New(sampleRate int) *Mixer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Mixer{sampleRate: sampleRate, voices: map[mng.Handle]*voice{}}
}

func (m *Mixer) SampleRate() int { return m.sampleRate }

// LoadWaves replaces the wave table. Sounds already playing keep the
// samples they were started with.
func (m *Mixer) LoadWaves(waves []mng.Wave) error {
	for i, w := range waves {
		if w.Channels != 1 && w.Channels != 2 {
			return fmt.Errorf("wave %d: %d channels, want 1 or 2", i, w.Channels)
		}
		if w.SampleRate <= 0 {
			return fmt.Errorf("wave %d: sample rate %d", i, w.SampleRate)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waves = append(m.waves[:0:0], waves...)
	return nil
}

func gains(volume, pan int) (left, right float32) {
	g := mng.Gain(volume)
	l, r := mng.PanGains(pan)
	return g * l, g * r
}

func (m *Mixer) StartControlledSound(wave mng.WaveID, volume, pan int, looped bool) (mng.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wave < 0 || int(wave) >= len(m.waves) {
		return 0, fmt.Errorf("%w: %d", ErrNoWave, wave)
	}
	w := m.waves[wave]
	frames := len(w.Data) / (2 * w.Channels)
	if looped && frames == 0 {
		return 0, fmt.Errorf("cannot loop empty wave %d", wave)
	}
	l, r := gains(volume, pan)
	m.next++
	m.voices[m.next] = &voice{
		wave:    w,
		frames:  frames,
		step:    float64(w.SampleRate) / float64(m.sampleRate),
		looped:  looped,
		curL:    l,
		curR:    r,
		targetL: l,
		targetR: r,
		done:    frames == 0,
	}
	return m.next, nil
}

func (m *Mixer) UpdateControlledSound(h mng.Handle, volume, pan int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[h]; ok && !v.release {
		v.targetL, v.targetR = gains(volume, pan)
	}
}

// StopControlledSound removes the sound. With fade, the sound is ramped to
// silence over the next buffer first.
func (m *Mixer) StopControlledSound(h mng.Handle, fade bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voices[h]
	if !ok {
		return
	}
	if !fade || v.done {
		delete(m.voices, h)
		return
	}
	v.release = true
	v.targetL, v.targetR = 0, 0
}

// FinishedControlledSound reports true for unknown handles.
func (m *Mixer) FinishedControlledSound(h mng.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voices[h]
	return !ok || v.done || v.release
}

// Voices returns the number of sounds being mixed.
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Peak returns the highest absolute sample value of the last buffer mixed.
func (m *Mixer) Peak() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// ReadAudio mixes the next len(buffer) frames of every sound into buffer.
func (m *Mixer) ReadAudio(buffer mng.AudioBuffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(buffer)
	m.left = vek32.Zeros_Into(grow(m.left, n), n)
	m.right = vek32.Zeros_Into(grow(m.right, n), n)
	m.tmpL, m.tmpR, m.ramp = grow(m.tmpL, n), grow(m.tmpR, n), grow(m.ramp, n)
	for h, v := range m.voices {
		v.render(m.tmpL, m.tmpR)
		m.applyGain(m.tmpL, v.curL, v.targetL)
		m.applyGain(m.tmpR, v.curR, v.targetR)
		v.curL, v.curR = v.targetL, v.targetR
		vek32.Add_Inplace(m.left, m.tmpL)
		vek32.Add_Inplace(m.right, m.tmpR)
		if v.release {
			delete(m.voices, h)
		}
	}
	for i := range buffer {
		buffer[i] = [2]float32{m.left[i], m.right[i]}
	}
	m.peak = 0
	if n > 0 {
		vek32.Abs_Inplace(m.left)
		vek32.Abs_Inplace(m.right)
		m.peak = max(vek32.Max(m.left), vek32.Max(m.right))
	}
	return nil
}

func (m *Mixer) applyGain(x []float32, from, to float32) {
	if from == to {
		vek32.MulNumber_Inplace(x, to)
		return
	}
	step := (to - from) / float32(len(x))
	for i := range m.ramp {
		m.ramp[i] = from + step*float32(i+1)
	}
	vek32.Mul_Inplace(x, m.ramp)
}

// render resamples the next frames of the voice into l and r with linear
// interpolation. A mono wave plays on both channels.
func (v *voice) render(l, r []float32) {
	for i := range l {
		if v.done {
			l[i], r[i] = 0, 0
			continue
		}
		f := int(v.pos)
		frac := float32(v.pos - float64(f))
		g := f + 1
		if g >= v.frames {
			if v.looped {
				g = 0
			} else {
				g = f
			}
		}
		a0, a1 := v.sample(f)
		b0, b1 := v.sample(g)
		l[i] = a0 + (b0-a0)*frac
		r[i] = a1 + (b1-a1)*frac
		v.pos += v.step
		if v.pos >= float64(v.frames) {
			if v.looped {
				for v.pos >= float64(v.frames) {
					v.pos -= float64(v.frames)
				}
			} else {
				v.done = true
			}
		}
	}
}

func (v *voice) sample(frame int) (left, right float32) {
	i := frame * v.wave.Channels * 2
	left = float32(int16(uint16(v.wave.Data[i])|uint16(v.wave.Data[i+1])<<8)) / 32768
	if v.wave.Channels == 1 {
		return left, left
	}
	right = float32(int16(uint16(v.wave.Data[i+2])|uint16(v.wave.Data[i+3])<<8)) / 32768
	return left, right
}

func grow(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}
