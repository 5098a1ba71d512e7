package mng_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mnglab/mng"
)

func testBundle() *mng.Bundle {
	return &mng.Bundle{
		Name:   "caves",
		Script: `Track("Drip"){ LoopLayer("L"){ Wave("drip") } }`,
		Waves: []mng.Wave{
			{Channels: 1, SampleRate: 22050, Data: []byte{1, 2, 3, 4}},
			{Channels: 2, SampleRate: 44100, Data: []byte{5, 6, 7, 8, 9, 10, 11, 12}},
		},
	}
}

func TestBundleEncodeRead(t *testing.T) {
	b := testBundle()
	data := b.Encode()
	if bytes.Contains(data, []byte("LoopLayer")) {
		t.Error("encoded bundle holds the script in the clear")
	}
	got, err := mng.ReadBundle(data)
	if err != nil {
		t.Fatalf("ReadBundle: %v", err)
	}
	if got.Script != b.Script {
		t.Errorf("script = %q, want %q", got.Script, b.Script)
	}
	if len(got.Waves) != len(b.Waves) {
		t.Fatalf("%d waves, want %d", len(got.Waves), len(b.Waves))
	}
	for i, w := range got.Waves {
		want := b.Waves[i]
		if w.Channels != want.Channels || w.SampleRate != want.SampleRate || !bytes.Equal(w.Data, want.Data) {
			t.Errorf("wave %d = %+v, want %+v", i, w, want)
		}
	}
}

func TestReadBundleRejectsTruncated(t *testing.T) {
	data := testBundle().Encode()
	for _, n := range []int{0, 8, len(data) - 1} {
		if _, err := mng.ReadBundle(data[:n]); !errors.Is(err, mng.ErrBadBundle) {
			t.Errorf("ReadBundle of %d bytes: error = %v, want ErrBadBundle", n, err)
		}
	}
}

func TestObfuscateIsInvolution(t *testing.T) {
	data := []byte("Track(\"T\"){ }")
	orig := append([]byte(nil), data...)
	mng.Obfuscate(data)
	if bytes.Equal(data, orig) {
		t.Fatal("Obfuscate left the data unchanged")
	}
	mng.Obfuscate(data)
	if !bytes.Equal(data, orig) {
		t.Errorf("Obfuscate twice = %q, want %q", data, orig)
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "caves"+mng.BundleExtension), testBundle().Encode(), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	loader := mng.DirLoader(dir)
	names, err := loader.Bundles()
	if err != nil {
		t.Fatalf("Bundles: %v", err)
	}
	if len(names) != 1 || names[0] != "caves" {
		t.Fatalf("Bundles = %v, want [caves]", names)
	}
	b, err := loader.LoadBundle("caves")
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if b.Name != "caves" || len(b.Waves) != 2 {
		t.Errorf("loaded %v with %d waves", b.Name, len(b.Waves))
	}
	if _, err := loader.LoadBundle("missing"); err == nil {
		t.Error("LoadBundle of a missing bundle succeeded")
	}
}

func TestReadWav(t *testing.T) {
	samples := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	w, err := mng.ReadWav(mng.PCMWav(samples, 2, 11025))
	if err != nil {
		t.Fatalf("ReadWav: %v", err)
	}
	if w.Channels != 2 || w.SampleRate != 11025 || !bytes.Equal(w.Data, samples) {
		t.Errorf("ReadWav = %+v", w)
	}
	if d := w.Duration(); d != 2.0/11025 {
		t.Errorf("Duration = %v, want two frames", d)
	}
	if _, err := mng.ReadWav([]byte("RIFF....WAVE")); err == nil {
		t.Error("ReadWav of a file without chunks succeeded")
	}
}

func TestWavOfBuffer(t *testing.T) {
	buffer := mng.AudioBuffer{{0.5, -0.5}, {1, -1}}
	data, err := mng.Wav(buffer, 22050, true)
	if err != nil {
		t.Fatalf("Wav: %v", err)
	}
	w, err := mng.ReadWav(data)
	if err != nil {
		t.Fatalf("ReadWav: %v", err)
	}
	if w.Channels != 2 || len(w.Data) != 8 {
		t.Errorf("read back %d channels with %d bytes, want 2 and 8", w.Channels, len(w.Data))
	}
}
