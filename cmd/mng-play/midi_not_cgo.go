//go:build !cgo

package main

import (
	"errors"

	"github.com/mnglab/mng/gomidi"
)

// with no cgo, there is no MIDI driver
var errNoMIDI = errors.New("MIDI input needs a build with cgo")

func openMIDI(port string, m *gomidi.Mapper) (func(), error) {
	return nil, errNoMIDI
}

func midiPorts() ([]string, error) {
	return nil, errNoMIDI
}
