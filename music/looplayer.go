package music

import (
	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

// LoopLayer plays one wave looped for as long as its track plays. Every Rate
// seconds, or every tick when Rate is 0, the Pan variable is pushed to the
// live loop; volume changes reach it on the tick they happen.
type LoopLayer struct {
	layerBase
	wave    mng.WaveID
	hasWave bool
	pan     script.Ref
	rate    float64

	nextApply float64
}

func newLoopLayer(s *session, track *Track, name string) *LoopLayer {
	l := &LoopLayer{layerBase: newLayerBase(s, track, name)}
	l.pan = l.vars.Declare("Pan", 0)
	return l
}

// Wave returns the looped wave, or false if the layer names none.
func (l *LoopLayer) Wave() (mng.WaveID, bool) { return l.wave, l.hasWave }

func (l *LoopLayer) Pan() float64  { return l.s.table.Value(l.pan) }
func (l *LoopLayer) Rate() float64 { return l.rate }

func (l *LoopLayer) start(now float64) {
	l.startBase(now)
	l.StopLoop()
	l.nextApply = now
}

func (l *LoopLayer) update(now, overall float64) {
	l.tick(now, overall)
	if !l.hasWave {
		return
	}
	if l.loop == nil {
		if l.LoopSound(l.wave, 1, l.Pan()) {
			l.nextApply = now + l.rate
		}
		return
	}
	if l.rate <= 0 || now >= l.nextApply {
		l.UpdateLoop(1, l.Pan())
		l.nextApply += l.rate
		if l.nextApply < now {
			l.nextApply = now + l.rate
		}
	}
}
