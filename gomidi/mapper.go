// Package gomidi steers the mood and threat of a music manager from the
// control changes of a MIDI input.
package gomidi

import "gitlab.com/gomidi/midi/v2"

type (
	// Targets is what control changes are applied to; *music.Manager
	// implements it.
	Targets interface {
		SetMood(v float64)
		SetThreat(v float64)
	}

	// Mapper turns control changes into mood and threat targets. MIDI
	// messages arrive on the driver's goroutine; HandleMessage queues them
	// and Apply, called from the goroutine that owns the manager, drains the
	// queue.
	Mapper struct {
		moodCC, threatCC uint8
		events           chan change
	}

	change struct {
		controller uint8
		value      uint8
	}
)

func NewMapper(moodCC, threatCC uint8) *Mapper {
	return &Mapper{moodCC: moodCC, threatCC: threatCC, events: make(chan change, 1024)}
}

// HandleMessage is the midi.ListenTo callback. Messages other than control
// changes are dropped, as are changes arriving while the queue is full.
func (m *Mapper) HandleMessage(msg midi.Message, timestampms int32) {
	var ch, controller, value uint8
	if !msg.GetControlChange(&ch, &controller, &value) {
		return
	}
	if controller != m.moodCC && controller != m.threatCC {
		return
	}
	select {
	case m.events <- change{controller: controller, value: value}:
	default:
	}
}

// Apply hands the queued changes to t, scaling controller values onto
// [0,1]. It never blocks.
func (m *Mapper) Apply(t Targets) {
	for {
		select {
		case c := <-m.events:
			v := float64(c.value) / 127
			switch c.controller {
			case m.moodCC:
				t.SetMood(v)
			case m.threatCC:
				t.SetThreat(v)
			}
		default:
			return
		}
	}
}
