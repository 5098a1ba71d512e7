// Package oto plays an audio source on the default output device.
package oto

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/mnglab/mng"
)

type (
	// Output pulls audio from a source on the output device's own goroutine
	// for as long as it is open.
	Output struct {
		ctx    *oto.Context
		player *oto.Player
	}

	// reader adapts an mng.AudioSource to the io.Reader oto consumes.
	reader struct {
		source mng.AudioSource
		pcm16  bool
		buffer mng.AudioBuffer
		tmp    []byte
		err    error
	}
)

// NewOutput opens the output device at sampleRate and starts playing source.
// With pcm16 the device is fed 16-bit integers instead of floats.
func NewOutput(source mng.AudioSource, sampleRate int, bufferSize time.Duration, pcm16 bool) (*Output, error) {
	format := oto.FormatFloat32LE
	if pcm16 {
		format = oto.FormatSignedInt16LE
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       format,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	player := ctx.NewPlayer(&reader{source: source, pcm16: pcm16})
	player.Play()
	return &Output{ctx: ctx, player: player}, nil
}

// Err returns the error that stopped playback, if any.
func (o *Output) Err() error {
	if err := o.player.Err(); err != nil {
		return fmt.Errorf("oto player: %w", err)
	}
	return nil
}

// Close stops playback and suspends the device.
func (o *Output) Close() error {
	o.player.Pause()
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (r *reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	frameSize := 8
	if r.pcm16 {
		frameSize = 4
	}
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buffer) < frames {
		r.buffer = make(mng.AudioBuffer, frames)
	}
	buffer := r.buffer[:frames]
	if err := r.source.ReadAudio(buffer); err != nil {
		r.err = fmt.Errorf("cannot read audio: %w", err)
		return 0, r.err
	}
	if r.pcm16 {
		r.tmp = floatBufferTo16BitLE(buffer, r.tmp[:0])
	} else {
		r.tmp = floatBufferToLE(buffer, r.tmp[:0])
	}
	return copy(p, r.tmp), nil
}
