package music

import (
	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

// DefaultResolution is the tick length, in seconds, the engine is tuned
// for. Queued sounds due within one resolution of now are started early
// rather than a tick late.
const DefaultResolution = 0.05

// session is everything compiled from one script: the variable table, the
// wave and effect libraries and the tracks. It is replaced as a whole when
// a new script or bundle is loaded.
type session struct {
	bundle  string
	source  string
	table   *script.Table
	waves   *WaveLibrary
	effects map[string]*Effect
	order   []*Effect
	tracks  []*Track
	index   map[string]*Track

	vars   *script.VariableContainer
	mood   script.Ref
	threat script.Ref
	script.Updatable

	device     mng.SoundDevice
	resolution float64
}

func newSession(seed uint64, device mng.SoundDevice, resolution float64) *session {
	s := &session{
		table:      script.NewTable(seed),
		waves:      NewWaveLibrary(),
		effects:    map[string]*Effect{},
		index:      map[string]*Track{},
		device:     device,
		resolution: resolution,
	}
	s.vars = s.table.NewScope("manager")
	s.mood = s.vars.DeclareReadOnly("Mood", 0)
	s.threat = s.vars.DeclareReadOnly("Threat", 0)
	return s
}

func (s *session) track(name string) (*Track, bool) {
	t, ok := s.index[script.FoldName(name)]
	return t, ok
}

func (s *session) effect(name string) (*Effect, bool) {
	e, ok := s.effects[script.FoldName(name)]
	return e, ok
}

func (s *session) scope() script.Scope {
	return script.Scope{Manager: s.vars}
}
