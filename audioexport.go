package mng

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// WavHeaderSize is the size of a canonical 16-bit PCM .wav header, the fixed
// size header that leads every wave payload in a bundle.
const WavHeaderSize = 44

// Wav encodes a stereo buffer as a .wav file. If pcm16 is true, the samples
// are converted to 16-bit signed integers; otherwise they are written as
// float32.
func Wav(buffer AudioBuffer, sampleRate int, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(len(buffer)*2, 2, sampleRate, pcm16, buf)
	err := rawToBuffer(buffer, pcm16, buf)
	if err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

func Raw(buffer AudioBuffer, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := rawToBuffer(buffer, pcm16, buf)
	if err != nil {
		return nil, fmt.Errorf("Raw failed: %v", err)
	}
	return buf.Bytes(), nil
}

// PCMWav prepends a canonical 16-bit PCM header to already encoded sample
// data. The result is exactly WavHeaderSize bytes longer than data.
func PCMWav(data []byte, channels, sampleRate int) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(WavHeaderSize + len(data))
	wavHeader(len(data)/2, channels, sampleRate, true, buf)
	buf.Write(data)
	return buf.Bytes()
}

func rawToBuffer(data AudioBuffer, pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		int16data := make([][2]int16, len(data))
		for i, v := range data {
			int16data[i][0] = int16(clamp(int(v[0]*math.MaxInt16), math.MinInt16, math.MaxInt16))
			int16data[i][1] = int16(clamp(int(v[1]*math.MaxInt16), math.MinInt16, math.MaxInt16))
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, data)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return nil
}

// wavHeader writes a wave header for either float32 or int16 .wav file into the
// bytes.buffer. samples is the total number of samples over all channels. If
// pcm16 = true, then the header is for int16 audio; pcm16 = false means the
// header is for float32 audio.
func wavHeader(samples, numChannels, sampleRate int, pcm16 bool, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*samples
		fmtChunkSize = 16
		waveFormat = 1 // PCM
		factChunk = false
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*samples
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	binary.Write(buf, binary.LittleEndian, uint16(waveFormat))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // size of extension
	}
	if factChunk {
		buf.Write([]byte("fact"))
		binary.Write(buf, binary.LittleEndian, uint32(4))                   // fact chunk size
		binary.Write(buf, binary.LittleEndian, uint32(samples/numChannels)) // sample length
	}
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*samples))
}

// parseWavHeader reads the channel count and sample rate from a canonical
// 16-bit PCM header.
func parseWavHeader(header []byte) (channels, sampleRate int, err error) {
	if len(header) < WavHeaderSize {
		return 0, 0, fmt.Errorf("wave header is %d bytes, want %d", len(header), WavHeaderSize)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, 0, fmt.Errorf("wave header lacks RIFF/WAVE tags")
	}
	if format := binary.LittleEndian.Uint16(header[20:22]); format != 1 {
		return 0, 0, fmt.Errorf("wave format %d is not PCM", format)
	}
	if bits := binary.LittleEndian.Uint16(header[34:36]); bits != 16 {
		return 0, 0, fmt.Errorf("wave has %d bits per sample, want 16", bits)
	}
	channels = int(binary.LittleEndian.Uint16(header[22:24]))
	sampleRate = int(binary.LittleEndian.Uint32(header[24:28]))
	if channels != 1 && channels != 2 {
		return 0, 0, fmt.Errorf("wave has %d channels, want 1 or 2", channels)
	}
	return channels, sampleRate, nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ReadWav decodes a 16-bit PCM .wav file. Chunks other than "fmt " and
// "data" are skipped, so the header need not be canonical.
func ReadWav(data []byte) (Wave, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Wave{}, fmt.Errorf("not a RIFF/WAVE file")
	}
	var w Wave
	haveFormat := false
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4:]))
		body := data[pos+8:]
		if size > len(body) {
			return Wave{}, fmt.Errorf("chunk %q of %d bytes is truncated", id, size)
		}
		body = body[:size]
		switch id {
		case "fmt ":
			if size < 16 {
				return Wave{}, fmt.Errorf("fmt chunk is %d bytes", size)
			}
			if format := binary.LittleEndian.Uint16(body[0:2]); format != 1 {
				return Wave{}, fmt.Errorf("wave format %d is not PCM", format)
			}
			if bits := binary.LittleEndian.Uint16(body[14:16]); bits != 16 {
				return Wave{}, fmt.Errorf("wave has %d bits per sample, want 16", bits)
			}
			w.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			w.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			if w.Channels != 1 && w.Channels != 2 {
				return Wave{}, fmt.Errorf("wave has %d channels, want 1 or 2", w.Channels)
			}
			haveFormat = true
		case "data":
			if !haveFormat {
				return Wave{}, fmt.Errorf("data chunk before fmt chunk")
			}
			w.Data = make([]byte, size)
			copy(w.Data, body)
			return w, nil
		}
		pos += 8 + size + size&1 // chunks are padded to even sizes
	}
	return Wave{}, fmt.Errorf("no data chunk")
}
