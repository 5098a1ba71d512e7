package mng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type (
	// Bundle is a packaged music asset: one script plus the wave payloads the
	// script refers to. Waves[i] holds the samples of WaveID i.
	Bundle struct {
		Name   string
		Script string
		Waves  []Wave
	}

	// Wave is the sample data of one wave: 16-bit signed little-endian PCM,
	// interleaved when Channels is 2.
	Wave struct {
		Channels   int
		SampleRate int
		Data       []byte
	}

	// BundleLoader finds bundles by name.
	BundleLoader interface {
		Bundles() ([]string, error)
		LoadBundle(name string) (*Bundle, error)
	}

	// DirLoader loads the *.mng files of a directory; the name of a bundle is
	// its file name without the extension.
	DirLoader string
)

// BundleExtension is the file extension of bundles on disk.
const BundleExtension = ".mng"

const (
	obfuscationSeed = 0x05
	obfuscationStep = 0xC1
)

var ErrBadBundle = errors.New("malformed bundle")

// Obfuscate applies the rotating-key XOR used for bundle scripts, in place.
// The transform is its own inverse.
func Obfuscate(data []byte) {
	key := byte(obfuscationSeed)
	for i := range data {
		data[i] ^= key
		key += obfuscationStep
	}
}

// ReadBundle decodes a bundle. The returned bundle does not alias data.
func ReadBundle(data []byte) (*Bundle, error) {
	r := headerReader{data: data}
	waveCount := r.next()
	scriptOffset, scriptLength := r.next(), r.next()
	if r.err != nil {
		return nil, r.err
	}
	if uint64(waveCount)*8 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: wave count %d exceeds file size", ErrBadBundle, waveCount)
	}
	script, err := slice(data, scriptOffset, scriptLength)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	decoded := make([]byte, len(script))
	copy(decoded, script)
	Obfuscate(decoded)
	ret := &Bundle{Script: string(decoded), Waves: make([]Wave, waveCount)}
	for i := range ret.Waves {
		offset, length := r.next(), r.next()
		if r.err != nil {
			return nil, r.err
		}
		payload, err := slice(data, offset, length)
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		channels, sampleRate, err := parseWavHeader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: wave %d: %v", ErrBadBundle, i, err)
		}
		samples := make([]byte, len(payload)-WavHeaderSize)
		copy(samples, payload[WavHeaderSize:])
		ret.Waves[i] = Wave{Channels: channels, SampleRate: sampleRate, Data: samples}
	}
	return ret, nil
}

// Encode packs the bundle into its on-disk form: header, obfuscated script,
// then the wave payloads, each behind a WavHeaderSize header.
func (b *Bundle) Encode() []byte {
	headerSize := 4 * (3 + 2*len(b.Waves))
	total := headerSize + len(b.Script)
	for _, w := range b.Waves {
		total += WavHeaderSize + len(w.Data)
	}
	ret := make([]byte, headerSize, total)
	binary.LittleEndian.PutUint32(ret[0:], uint32(len(b.Waves)))
	binary.LittleEndian.PutUint32(ret[4:], uint32(headerSize))
	binary.LittleEndian.PutUint32(ret[8:], uint32(len(b.Script)))
	script := []byte(b.Script)
	Obfuscate(script)
	ret = append(ret, script...)
	for i, w := range b.Waves {
		payload := PCMWav(w.Data, w.Channels, w.SampleRate)
		binary.LittleEndian.PutUint32(ret[12+8*i:], uint32(len(ret)))
		binary.LittleEndian.PutUint32(ret[16+8*i:], uint32(len(payload)))
		ret = append(ret, payload...)
	}
	return ret
}

// Duration returns the length of the wave in seconds.
func (w Wave) Duration() float64 {
	if w.Channels == 0 || w.SampleRate == 0 {
		return 0
	}
	return float64(len(w.Data)/(2*w.Channels)) / float64(w.SampleRate)
}

func (d DirLoader) Bundles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(string(d), "*"+BundleExtension))
	if err != nil {
		return nil, fmt.Errorf("could not glob the path %v for bundles: %w", string(d), err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), BundleExtension))
	}
	sort.Strings(names)
	return names, nil
}

func (d DirLoader) LoadBundle(name string) (*Bundle, error) {
	filename := filepath.Join(string(d), name+BundleExtension)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read bundle %v: %w", filename, err)
	}
	b, err := ReadBundle(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode bundle %v: %w", filename, err)
	}
	b.Name = name
	return b, nil
}

type headerReader struct {
	data []byte
	pos  int
	err  error
}

func (r *headerReader) next() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.err = fmt.Errorf("%w: header truncated at byte %d", ErrBadBundle, r.pos)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func slice(data []byte, offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: range %d+%d is outside the %d byte file", ErrBadBundle, offset, length, len(data))
	}
	return data[offset:end], nil
}
