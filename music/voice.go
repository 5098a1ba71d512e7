package music

import (
	"github.com/mnglab/mng"
	"github.com/mnglab/mng/script"
)

type (
	// Condition gates a voice: it holds when Test evaluates within
	// [Min,Max], both ends included.
	Condition struct {
		Test     *script.Expression
		Min, Max float64
	}

	// Voice is one candidate sound of an AleotoricLayer. A nil effect,
	// interval or volume falls back to the layer's.
	Voice struct {
		wave       mng.WaveID
		hasWave    bool
		effect     *Effect
		interval   *script.Expression
		volume     *script.Expression
		conditions []Condition
		update     *script.Action
	}
)

func (c Condition) Holds(t *script.Table) bool {
	v := c.Test.Evaluate(t)
	return v >= c.Min && v <= c.Max
}

// Eligible reports whether every condition of the voice holds.
func (v *Voice) Eligible(t *script.Table) bool {
	for _, c := range v.conditions {
		if !c.Holds(t) {
			return false
		}
	}
	return true
}

func (v *Voice) Wave() mng.WaveID        { return v.wave }
func (v *Voice) Conditions() []Condition { return v.conditions }

// parseVoice parses the body of Voice{ ... }.
func parseVoice(p *parser, scope script.Scope) (*Voice, error) {
	tz := p.tz
	start, err := tz.Expect(script.StartSection)
	if err != nil {
		return nil, err
	}
	v := &Voice{}
	for {
		tok := tz.Next()
		switch {
		case tok.Kind == script.EndSection:
			if !v.hasWave {
				return nil, script.Unexpected(start)
			}
			return v, nil
		case tok.Is("Wave"):
			name, err := tz.ParseNameArgument()
			if err != nil {
				return nil, err
			}
			v.wave, v.hasWave = p.s.waves.Intern(name), true
		case tok.Is("Effect"):
			if v.effect, err = p.effectArgument(); err != nil {
				return nil, err
			}
		case tok.Is("Interval"):
			if v.interval, err = parseExpressionArgument(tz, p.s.table, scope); err != nil {
				return nil, err
			}
		case tok.Is("Volume"):
			if v.volume, err = parseExpressionArgument(tz, p.s.table, scope); err != nil {
				return nil, err
			}
		case tok.Is("Condition"):
			c, err := parseCondition(tz, p.s.table, scope)
			if err != nil {
				return nil, err
			}
			v.conditions = append(v.conditions, c)
		case tok.Is("Update"):
			if v.update != nil {
				return nil, script.Unexpected(tok)
			}
			if v.update, err = script.ParseAction(tz, p.s.table, scope); err != nil {
				return nil, err
			}
		default:
			return nil, script.Unexpected(tok)
		}
	}
}

// parseCondition parses "( expr , min , max )".
func parseCondition(tz *script.Tokenizer, t *script.Table, scope script.Scope) (Condition, error) {
	var c Condition
	if _, err := tz.Expect(script.StartArgument); err != nil {
		return c, err
	}
	test, err := script.ParseExpression(tz, t, scope)
	if err != nil {
		return c, err
	}
	c.Test = test
	for _, bound := range []*float64{&c.Min, &c.Max} {
		if _, err := tz.Expect(script.Separator); err != nil {
			return c, err
		}
		tok, err := tz.Expect(script.Constant)
		if err != nil {
			return c, err
		}
		*bound = tok.Value
	}
	_, err = tz.Expect(script.EndArgument)
	return c, err
}

func parseExpressionArgument(tz *script.Tokenizer, t *script.Table, scope script.Scope) (*script.Expression, error) {
	if _, err := tz.Expect(script.StartArgument); err != nil {
		return nil, err
	}
	e, err := script.ParseExpression(tz, t, scope)
	if err != nil {
		return nil, err
	}
	_, err = tz.Expect(script.EndArgument)
	return e, err
}
