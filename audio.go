package mng

type (
	// AudioBuffer is a buffer of stereo frames, left channel first.
	AudioBuffer [][2]float32

	// AudioSource fills buffers with rendered audio, e.g. a mixer.
	AudioSource interface {
		ReadAudio(buffer AudioBuffer) error
	}
)

// Fill renders frames from the source into a newly allocated buffer.
func Fill(source AudioSource, frames int) (AudioBuffer, error) {
	buffer := make(AudioBuffer, frames)
	if err := source.ReadAudio(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}
