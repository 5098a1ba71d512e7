package music

import "github.com/mnglab/mng/script"

// AleotoricLayer plays a randomly chosen voice among those whose conditions
// hold, either every Interval seconds or, with BeatSynch set, on every
// BeatSynch-th beat of its track. When no voice is eligible the layer tries
// again on the next tick.
type AleotoricLayer struct {
	layerBase
	voices    []*Voice
	interval  script.Ref
	beatSynch int
	effect    *Effect

	next     float64
	pending  bool
	previous *Voice
}

func newAleotoricLayer(s *session, track *Track, name string) *AleotoricLayer {
	l := &AleotoricLayer{layerBase: newLayerBase(s, track, name)}
	l.interval = l.vars.Declare("Interval", 0)
	return l
}

func (l *AleotoricLayer) Voices() []*Voice  { return l.voices }
func (l *AleotoricLayer) Interval() float64 { return l.s.table.Value(l.interval) }
func (l *AleotoricLayer) BeatSynch() int    { return l.beatSynch }
func (l *AleotoricLayer) Effect() *Effect   { return l.effect }

func (l *AleotoricLayer) start(now float64) {
	l.startBase(now)
	l.next = now
	l.pending = false
	l.previous = nil
}

func (l *AleotoricLayer) update(now, overall float64) {
	l.tick(now, overall)
	if l.beatSynch > 0 {
		if l.track.beat && l.track.beatCount%l.beatSynch == 0 {
			l.pending = true
		}
		if l.pending {
			_, ok := l.fire(now, overall)
			l.pending = !ok
		}
		return
	}
	if now < l.next {
		return
	}
	if interval, ok := l.fire(now, overall); ok {
		l.next = now + interval
	}
}

// fire plays one eligible voice and returns the interval until the next
// firing. It reports false if no voice was eligible. The layer gain is
// refreshed after the voice action, which may change the layer volume.
func (l *AleotoricLayer) fire(now, overall float64) (float64, bool) {
	t := l.s.table
	candidates := make([]*Voice, 0, len(l.voices))
	for _, v := range l.voices {
		if v.Eligible(t) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) > 1 && l.previous != nil {
		for i, v := range candidates {
			if v == l.previous {
				candidates = append(candidates[:i], candidates[i+1:]...)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	v := candidates[t.IntN(len(candidates))]
	l.previous = v
	v.update.Perform(t)
	l.refreshGain(overall)
	volume := 1.0
	if v.volume != nil {
		volume = v.volume.Evaluate(t)
	}
	effect := l.effect
	if v.effect != nil {
		effect = v.effect
	}
	interval := l.Interval()
	if v.interval != nil {
		interval = v.interval.Evaluate(t)
	}
	l.PlaySound(now, v.wave, volume, effect)
	return interval, true
}
