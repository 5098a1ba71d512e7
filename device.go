// Package mng holds the types shared by the music engine and its hosts:
// sound devices, bundles of scripts and waves, and audio buffers.
package mng

import "math"

type (
	// WaveID identifies an interned wave. IDs are assigned in order of first
	// sighting while a script is parsed, so they double as indices into the
	// wave payloads of the bundle the script came from.
	WaveID int

	// Handle identifies one live sound on a SoundDevice. The zero Handle is
	// never issued by a device.
	Handle int

	// SoundDevice is the mixer the music engine drives. The engine only issues
	// abstract start / update / stop requests; decoding and mixing sample data
	// is the device's business. Volume and pan are in device units, see
	// DeviceVolume and DevicePan.
	SoundDevice interface {
		StartControlledSound(wave WaveID, volume, pan int, looped bool) (Handle, error)
		UpdateControlledSound(h Handle, volume, pan int)
		StopControlledSound(h Handle, fade bool)
		FinishedControlledSound(h Handle) bool
	}

	// WaveLoader is implemented by devices that need the wave payloads of a
	// bundle before its sounds can be started. The slice is indexed by WaveID.
	WaveLoader interface {
		LoadWaves(waves []Wave) error
	}

	// NullDevice accepts every request and plays nothing. Sounds started on it
	// finish immediately unless they are looped.
	NullDevice struct {
		next   Handle
		looped map[Handle]bool
	}
)

const (
	// MinDeviceVolume is the attenuation of a silent sound, in hundredths of a
	// decibel.
	MinDeviceVolume = -10000
	// MaxDevicePan is the device pan of a sound fully to the right.
	MaxDevicePan = 10000
)

// DeviceVolume maps a linear volume in [0,1] onto device attenuation along a
// square-root curve. Values outside [0,1] are clamped.
func DeviceVolume(v float64) int {
	v = clampFloat(v, 0, 1)
	return int(math.Round(math.Sqrt(v)*-MinDeviceVolume)) + MinDeviceVolume
}

// DevicePan maps a pan in [-1,1] linearly onto [-MaxDevicePan,MaxDevicePan].
func DevicePan(p float64) int {
	p = clampFloat(p, -1, 1)
	return int(math.Round(p * MaxDevicePan))
}

// Gain converts a device attenuation back into a linear amplitude multiplier.
func Gain(volume int) float32 {
	if volume <= MinDeviceVolume {
		return 0
	}
	if volume >= 0 {
		return 1
	}
	return float32(math.Pow(10, float64(volume)/2000))
}

// PanGains returns the left and right channel multipliers for a device pan.
// Only the opposite channel is attenuated; a centred sound plays at full
// amplitude on both sides.
func PanGains(pan int) (left, right float32) {
	if pan > MaxDevicePan {
		pan = MaxDevicePan
	} else if pan < -MaxDevicePan {
		pan = -MaxDevicePan
	}
	left, right = 1, 1
	if pan > 0 {
		left = float32(MaxDevicePan-pan) / MaxDevicePan
	} else if pan < 0 {
		right = float32(MaxDevicePan+pan) / MaxDevicePan
	}
	return left, right
}

func (d *NullDevice) StartControlledSound(wave WaveID, volume, pan int, looped bool) (Handle, error) {
	if d.looped == nil {
		d.looped = map[Handle]bool{}
	}
	d.next++
	d.looped[d.next] = looped
	return d.next, nil
}

func (d *NullDevice) UpdateControlledSound(h Handle, volume, pan int) {}

func (d *NullDevice) StopControlledSound(h Handle, fade bool) {
	delete(d.looped, h)
}

func (d *NullDevice) FinishedControlledSound(h Handle) bool {
	looped, ok := d.looped[h]
	return !ok || !looped
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
