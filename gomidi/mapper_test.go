package gomidi_test

import (
	"testing"

	"github.com/mnglab/mng/gomidi"
	"gitlab.com/gomidi/midi/v2"
)

type targets struct{ mood, threat []float64 }

func (t *targets) SetMood(v float64)   { t.mood = append(t.mood, v) }
func (t *targets) SetThreat(v float64) { t.threat = append(t.threat, v) }

func TestControlChangesReachTargets(t *testing.T) {
	m := gomidi.NewMapper(1, 2)
	m.HandleMessage(midi.ControlChange(0, 1, 127), 0)
	m.HandleMessage(midi.NoteOn(0, 60, 100), 1)
	m.HandleMessage(midi.ControlChange(3, 2, 0), 2)
	m.HandleMessage(midi.ControlChange(0, 7, 64), 3)
	var got targets
	m.Apply(&got)
	if len(got.mood) != 1 || got.mood[0] != 1 {
		t.Errorf("mood targets = %v, want [1]", got.mood)
	}
	if len(got.threat) != 1 || got.threat[0] != 0 {
		t.Errorf("threat targets = %v, want [0]", got.threat)
	}
	m.Apply(&got)
	if len(got.mood)+len(got.threat) != 2 {
		t.Error("Apply delivered a change twice")
	}
}
