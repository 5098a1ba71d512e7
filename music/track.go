package music

import (
	"fmt"
	"math"

	"github.com/mnglab/mng/script"
)

// Status is the play state of a track. Finished is terminal until the track
// is started again.
type Status int

const (
	FadingIn Status = iota
	Playing
	FadingOut
	Finished
)

// InterruptFade is the fade-out, in seconds, forced on a track that is
// interrupted.
const InterruptFade = 1.0

var statusNames = [...]string{"FadingIn", "Playing", "FadingOut", "Finished"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Track is a named group of layers with its own tempo and fade envelope.
type Track struct {
	name       string
	vars       *script.VariableContainer
	volume     script.Ref
	beatLength script.Ref
	barLength  int
	fadeIn     float64
	fadeOut    float64
	layers     []Layer
	index      map[string]Layer
	script.Updatable

	s *session

	status       Status
	fadeEnd      float64
	fadeDuration float64
	multiplier   float64

	nextBeat    float64
	beatCount   int
	currentBeat int
	barCount    int
	// beat and bar are set for the tick on which the edge happened; the
	// latches stay set until read by HasBeatOccurred and HasBarOccurred.
	beat, bar           bool
	beatLatch, barLatch bool
}

func newTrack(s *session, name string) *Track {
	t := &Track{
		name:   name,
		vars:   s.table.NewScope(name),
		index:  map[string]Layer{},
		s:      s,
		status: Finished,
	}
	t.volume = t.vars.Declare("Volume", 1)
	t.beatLength = t.vars.Declare("BeatLength", 0)
	return t
}

func (t *Track) Name() string                         { return t.name }
func (t *Track) Variables() *script.VariableContainer { return t.vars }
func (t *Track) Layers() []Layer                      { return t.layers }
func (t *Track) Status() Status                       { return t.status }
func (t *Track) Volume() float64                      { return t.s.table.Value(t.volume) }
func (t *Track) BeatLength() float64                  { return t.s.table.Value(t.beatLength) }
func (t *Track) BarLength() int                       { return t.barLength }
func (t *Track) FadeIn() float64                      { return t.fadeIn }
func (t *Track) FadeOut() float64                     { return t.fadeOut }
func (t *Track) BeatCount() int                       { return t.beatCount }
func (t *Track) BarCount() int                        { return t.barCount }
func (t *Track) CurrentBeat() int                     { return t.currentBeat }

// Layer returns the layer with the given name.
func (t *Track) Layer(name string) (Layer, bool) {
	l, ok := t.index[script.FoldName(name)]
	return l, ok
}

// addLayer reports false if the track already has a layer of that name.
func (t *Track) addLayer(l Layer) bool {
	key := script.FoldName(l.Name())
	if _, ok := t.index[key]; ok {
		return false
	}
	t.index[key] = l
	t.layers = append(t.layers, l)
	return true
}

// siblings resolves the layer half of a scoped name.
func (t *Track) siblings(layer string) (*script.VariableContainer, bool) {
	l, ok := t.Layer(layer)
	if !ok {
		return nil, false
	}
	return l.Variables(), true
}

func (t *Track) scope() script.Scope {
	return script.Scope{Track: t.vars, Manager: t.s.vars, Siblings: t.siblings}
}

// HasBeatOccurred reports whether a beat happened since the last call.
func (t *Track) HasBeatOccurred() bool {
	ret := t.beatLatch
	t.beatLatch = false
	return ret
}

// HasBarOccurred reports whether a bar started since the last call.
func (t *Track) HasBarOccurred() bool {
	ret := t.barLatch
	t.barLatch = false
	return ret
}

// Start resets the track and its layers and begins fading in.
func (t *Track) Start(now float64) {
	t.vars.Reset()
	t.beatCount, t.currentBeat, t.barCount = 0, 0, 0
	t.beat, t.bar, t.beatLatch, t.barLatch = false, false, false, false
	t.Updatable.Start(t.s.table, now)
	t.nextBeat = now + t.BeatLength()
	for _, l := range t.layers {
		l.start(now)
	}
	if t.fadeIn > 0 {
		t.status = FadingIn
		t.fadeDuration = t.fadeIn
		t.fadeEnd = now + t.fadeIn
		t.multiplier = 0
	} else {
		t.status = Playing
		t.multiplier = 1
	}
}

// FadeMultiplier returns the envelope at now: the progress of a fade-in,
// the fraction left of a fade-out, 1 while playing and 0 once finished.
func (t *Track) FadeMultiplier(now float64) float64 {
	switch t.status {
	case FadingIn:
		return clamp(1-(t.fadeEnd-now)/t.fadeDuration, 0, 1)
	case Playing:
		return 1
	case FadingOut:
		return clamp((t.fadeEnd-now)/t.fadeDuration, 0, 1)
	}
	return 0
}

// BeginFadingOut fades the track out over duration seconds from its
// current envelope: a track that is part way faded in, or already fading
// out, finishes in the same fraction of duration.
func (t *Track) BeginFadingOut(now, duration float64) {
	if t.status == Finished {
		return
	}
	m := t.FadeMultiplier(now)
	if duration <= 0 || m <= 0 {
		t.Stop(true)
		return
	}
	t.status = FadingOut
	t.fadeDuration = duration
	t.fadeEnd = now + m*duration
}

// Stop finishes the track immediately, releasing the sounds of its layers.
func (t *Track) Stop(fade bool) {
	t.status = Finished
	t.multiplier = 0
	for _, l := range t.layers {
		l.base().stop(fade)
	}
}

// Update advances the envelope and the tempo, runs the track script and
// updates the layers. overall is the manager volume.
func (t *Track) Update(now, overall float64) {
	switch t.status {
	case Finished:
		return
	case FadingIn:
		if now >= t.fadeEnd {
			t.status = Playing
		}
	case FadingOut:
		if now >= t.fadeEnd {
			t.Stop(true)
			return
		}
	}
	t.multiplier = t.FadeMultiplier(now)
	t.tempo(now)
	t.Updatable.Tick(t.s.table, now)
	gain := overall * t.Volume() * t.multiplier
	for _, l := range t.layers {
		l.update(now, gain)
	}
}

func (t *Track) tempo(now float64) {
	t.beat, t.bar = false, false
	length := t.BeatLength()
	if length <= 0 {
		return
	}
	if now < t.nextBeat {
		return
	}
	t.nextBeat += length
	if t.nextBeat <= now {
		t.nextBeat = now + length
	}
	t.beatCount++
	t.beat, t.beatLatch = true, true
	if t.barLength > 0 {
		t.currentBeat++
		if t.currentBeat >= t.barLength {
			t.currentBeat = 0
			t.barCount++
			t.bar, t.barLatch = true, true
		}
	}
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
