//go:build cgo

package gomidi

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Input is an open MIDI input port feeding a Mapper.
type Input struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// Ports lists the names of the MIDI inputs.
func Ports() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret, nil
}

// Open listens to the first input whose name starts with namePrefix.
func Open(namePrefix string, m *Mapper) (*Input, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if !strings.HasPrefix(in.String(), namePrefix) {
			continue
		}
		if err := in.Open(); err != nil {
			driver.Close()
			return nil, fmt.Errorf("opening MIDI input failed: %w", err)
		}
		stop, err := midi.ListenTo(in, m.HandleMessage)
		if err != nil {
			in.Close()
			driver.Close()
			return nil, fmt.Errorf("cannot listen to MIDI input: %w", err)
		}
		return &Input{driver: driver, in: in, stop: stop}, nil
	}
	driver.Close()
	return nil, fmt.Errorf("could not find a MIDI input starting with %q", namePrefix)
}

func (i *Input) String() string { return i.in.String() }

func (i *Input) Close() {
	i.stop()
	if i.in.IsOpen() {
		i.in.Close()
	}
	i.driver.Close()
}
