//go:build cgo

package main

import "github.com/mnglab/mng/gomidi"

func openMIDI(port string, m *gomidi.Mapper) (func(), error) {
	in, err := gomidi.Open(port, m)
	if err != nil {
		return nil, err
	}
	return in.Close, nil
}

func midiPorts() ([]string, error) {
	return gomidi.Ports()
}
