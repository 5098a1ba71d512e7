package music

import "github.com/mnglab/mng/script"

type (
	// Param is a stage parameter: a fixed value when Min == Max, or a value
	// drawn uniformly from [Min,Max) every time the stage is read.
	Param struct {
		Min, Max float64
	}

	// Stage is one echo of an effect. Delay separates this stage from the
	// next one; with TempoDelay set it is measured in beats instead of
	// seconds.
	Stage struct {
		Pan        Param
		Volume     Param
		Delay      Param
		TempoDelay bool
	}

	// StageValues is a stage as read: jitter applied and delay in seconds.
	StageValues struct {
		Volume, Pan, Delay float64
	}

	// Effect is a named chain of stages applied when a layer plays a sound.
	Effect struct {
		name   string
		stages []Stage

		cursor     int
		beatLength float64
	}
)

func NewEffect(name string, stages ...Stage) *Effect {
	return &Effect{name: name, stages: stages}
}

func (e *Effect) Name() string    { return e.name }
func (e *Effect) Stages() []Stage { return e.stages }

// Value returns the parameter value, rolling the jitter with t's random
// source.
func (p Param) Value(t *script.Table) float64 {
	return t.Random(p.Min, p.Max)
}

func fixed(v float64) Param {
	return Param{Min: v, Max: v}
}

// BeginReadingStages rewinds the effect to its first stage. Tempo-relative
// delays read until the next rewind are scaled by beatLength.
func (e *Effect) BeginReadingStages(beatLength float64) {
	e.cursor = 0
	e.beatLength = beatLength
}

// ReadStage returns the next stage, or false after the last one.
func (e *Effect) ReadStage(t *script.Table) (StageValues, bool) {
	if e.cursor >= len(e.stages) {
		return StageValues{}, false
	}
	s := e.stages[e.cursor]
	e.cursor++
	v := StageValues{
		Volume: s.Volume.Value(t),
		Pan:    s.Pan.Value(t),
		Delay:  s.Delay.Value(t),
	}
	if s.TempoDelay {
		v.Delay *= e.beatLength
	}
	return v, true
}

// parseStage parses the body of Stage{ ... }. Pan and Volume default to 0
// and 1.
func parseStage(tz *script.Tokenizer) (Stage, error) {
	stage := Stage{Volume: fixed(1)}
	if _, err := tz.Expect(script.StartSection); err != nil {
		return stage, err
	}
	for {
		tok := tz.Next()
		var err error
		switch {
		case tok.Kind == script.EndSection:
			return stage, nil
		case tok.Is("Pan"):
			stage.Pan, err = parseParam(tz)
		case tok.Is("Volume"):
			stage.Volume, err = parseParam(tz)
		case tok.Is("Delay"):
			stage.Delay, err = parseParam(tz)
			stage.TempoDelay = false
		case tok.Is("TempoDelay"):
			stage.Delay, err = parseParam(tz)
			stage.TempoDelay = true
		default:
			return stage, script.Unexpected(tok)
		}
		if err != nil {
			return stage, err
		}
	}
}

// parseParam parses "( constant )" or "( Random ( constant , constant ) )".
func parseParam(tz *script.Tokenizer) (Param, error) {
	if _, err := tz.Expect(script.StartArgument); err != nil {
		return Param{}, err
	}
	var p Param
	tok := tz.Next()
	switch {
	case tok.Kind == script.Constant:
		p = fixed(tok.Value)
	case tok.Is("Random"):
		if _, err := tz.Expect(script.StartArgument); err != nil {
			return p, err
		}
		min, err := tz.Expect(script.Constant)
		if err != nil {
			return p, err
		}
		if _, err := tz.Expect(script.Separator); err != nil {
			return p, err
		}
		max, err := tz.Expect(script.Constant)
		if err != nil {
			return p, err
		}
		if _, err := tz.Expect(script.EndArgument); err != nil {
			return p, err
		}
		p = Param{Min: min.Value, Max: max.Value}
	default:
		return p, script.Unexpected(tok)
	}
	_, err := tz.Expect(script.EndArgument)
	return p, err
}
