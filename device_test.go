package mng_test

import (
	"testing"

	"github.com/mnglab/mng"
)

func TestDeviceVolume(t *testing.T) {
	for _, tc := range []struct {
		v    float64
		want int
	}{
		{0, mng.MinDeviceVolume},
		{-1, mng.MinDeviceVolume},
		{1, 0},
		{2, 0},
		{0.25, -5000},
	} {
		if got := mng.DeviceVolume(tc.v); got != tc.want {
			t.Errorf("DeviceVolume(%v) = %d, want %d", tc.v, got, tc.want)
		}
	}
	if g := mng.Gain(mng.MinDeviceVolume); g != 0 {
		t.Errorf("Gain of silence = %v, want 0", g)
	}
	if g := mng.Gain(0); g != 1 {
		t.Errorf("Gain(0) = %v, want 1", g)
	}
	if a, b := mng.Gain(-2000), mng.Gain(-1000); !(a < b && b < 1) {
		t.Errorf("Gain is not monotonic: Gain(-2000) = %v, Gain(-1000) = %v", a, b)
	}
}

func TestDevicePan(t *testing.T) {
	if p := mng.DevicePan(-3); p != -mng.MaxDevicePan {
		t.Errorf("DevicePan(-3) = %d, want %d", p, -mng.MaxDevicePan)
	}
	if p := mng.DevicePan(0.5); p != mng.MaxDevicePan/2 {
		t.Errorf("DevicePan(0.5) = %d, want %d", p, mng.MaxDevicePan/2)
	}
	if l, r := mng.PanGains(0); l != 1 || r != 1 {
		t.Errorf("centred gains = %v, %v; want 1, 1", l, r)
	}
	if l, r := mng.PanGains(mng.MaxDevicePan); l != 0 || r != 1 {
		t.Errorf("right gains = %v, %v; want 0, 1", l, r)
	}
	if l, r := mng.PanGains(-mng.MaxDevicePan / 2); l != 1 || r != 0.5 {
		t.Errorf("half left gains = %v, %v; want 1, 0.5", l, r)
	}
}

func TestNullDevice(t *testing.T) {
	var d mng.NullDevice
	oneShot, err := d.StartControlledSound(0, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	loop, _ := d.StartControlledSound(1, 0, 0, true)
	if oneShot == 0 || loop == 0 || oneShot == loop {
		t.Fatalf("handles %d and %d, want distinct non-zero", oneShot, loop)
	}
	if !d.FinishedControlledSound(oneShot) {
		t.Error("one-shot sound did not finish")
	}
	if d.FinishedControlledSound(loop) {
		t.Error("looped sound finished on its own")
	}
	d.StopControlledSound(loop, true)
	if !d.FinishedControlledSound(loop) {
		t.Error("stopped loop is not finished")
	}
}
