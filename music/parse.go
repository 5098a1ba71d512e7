package music

import "github.com/mnglab/mng/script"

type (
	// parser compiles a script into a session in two passes. The first pass
	// declares every track, layer, effect and variable so that the second
	// can resolve names used before their declaration.
	parser struct {
		tz      *script.Tokenizer
		s       *session
		targets []target
	}

	// target is an assignment target seen by the first pass, with the track
	// and layer it was assigned in.
	target struct {
		tok   script.Token
		track *Track
		layer Layer
	}
)

// compile parses src into s.
func compile(s *session, src string) error {
	s.source = src
	p := &parser{s: s}
	if err := p.preParse(src); err != nil {
		return err
	}
	return p.parse(src)
}

func layerScope(t *Track, l Layer) script.Scope {
	scope := t.scope()
	scope.Layer = l.Variables()
	return scope
}

func (p *parser) scopeOf(t *Track, l Layer) script.Scope {
	switch {
	case l != nil:
		return layerScope(t, l)
	case t != nil:
		return t.scope()
	}
	return p.s.scope()
}

// preParse is the first pass. Besides declaring names it declares, with
// initial value 0, every plain assignment target that does not resolve by
// the end of the pass, in the innermost scope it is assigned in.
func (p *parser) preParse(src string) error {
	p.tz = script.NewTokenizer(src)
	tz := p.tz
	for tok := tz.Next(); tok.Kind != script.EndOfFile; tok = tz.Next() {
		switch {
		case tok.Is("Variable"):
			if err := p.variable(p.s.vars); err != nil {
				return err
			}
		case tok.Is("Effect"):
			name, err := p.nameArgument()
			if err != nil {
				return err
			}
			key := script.FoldName(name.Text)
			if _, ok := p.s.effects[key]; ok {
				return script.Unexpected(name)
			}
			e := NewEffect(name.Text)
			p.s.effects[key] = e
			p.s.order = append(p.s.order, e)
			if err := tz.Skip(); err != nil {
				return err
			}
		case tok.Is("Track"):
			name, err := p.nameArgument()
			if err != nil {
				return err
			}
			key := script.FoldName(name.Text)
			if _, ok := p.s.index[key]; ok {
				return script.Unexpected(name)
			}
			t := newTrack(p.s, name.Text)
			p.s.index[key] = t
			p.s.tracks = append(p.s.tracks, t)
			if err := p.preTrack(t); err != nil {
				return err
			}
		default:
			if err := p.preUpdatable(tok, nil, nil); err != nil {
				return err
			}
		}
	}
	for _, tg := range p.targets {
		if tg.tok.Kind != script.String {
			continue
		}
		scope := p.scopeOf(tg.track, tg.layer)
		if _, ok := scope.Lookup(tg.tok.Text); !ok {
			scope.Innermost().Declare(tg.tok.Text, 0)
		}
	}
	return nil
}

// preUpdatable skips an Initialise, Update or UpdateRate element, noting
// its targets. Any other token is an error.
func (p *parser) preUpdatable(tok script.Token, t *Track, l Layer) error {
	handled, targets, err := script.PreParseElement(tok, p.tz)
	if err != nil {
		return err
	}
	if !handled {
		return script.Unexpected(tok)
	}
	for _, tg := range targets {
		p.targets = append(p.targets, target{tok: tg, track: t, layer: l})
	}
	return nil
}

func (p *parser) preTrack(t *Track) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	for {
		tok := tz.Next()
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Variable"):
			if err := p.variable(t.vars); err != nil {
				return err
			}
		case tok.Is("LoopLayer"), tok.Is("AleotoricLayer"):
			name, err := p.nameArgument()
			if err != nil {
				return err
			}
			var l Layer
			if tok.Is("LoopLayer") {
				l = newLoopLayer(p.s, t, name.Text)
			} else {
				l = newAleotoricLayer(p.s, t, name.Text)
			}
			if !t.addLayer(l) {
				return script.Unexpected(name)
			}
			if err := p.preLayer(t, l); err != nil {
				return err
			}
		case tok.Is("Volume"), tok.Is("BeatLength"), tok.Is("BarLength"), tok.Is("FadeIn"), tok.Is("FadeOut"):
			if err := tz.Skip(); err != nil {
				return err
			}
		default:
			if err := p.preUpdatable(tok, t, nil); err != nil {
				return err
			}
		}
	}
}

func (p *parser) preLayer(t *Track, l Layer) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	for {
		tok := tz.Next()
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Variable"):
			if err := p.variable(l.Variables()); err != nil {
				return err
			}
		case tok.Is("Voice"):
			if err := p.preVoice(t, l); err != nil {
				return err
			}
		case tok.Is("Initialise"), tok.Is("Update"), tok.Is("UpdateRate"):
			if err := p.preUpdatable(tok, t, l); err != nil {
				return err
			}
		case tok.Kind == script.String:
			if err := tz.Skip(); err != nil {
				return err
			}
		default:
			return script.Unexpected(tok)
		}
	}
}

func (p *parser) preVoice(t *Track, l Layer) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	for {
		tok := tz.Next()
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Update"):
			targets, err := script.CollectTargets(tz)
			if err != nil {
				return err
			}
			for _, tg := range targets {
				p.targets = append(p.targets, target{tok: tg, track: t, layer: l})
			}
		case tok.Kind == script.String:
			if err := tz.Skip(); err != nil {
				return err
			}
		default:
			return script.Unexpected(tok)
		}
	}
}

// parse is the second pass. Every name it meets was declared by the first.
func (p *parser) parse(src string) error {
	p.tz = script.NewTokenizer(src)
	tz := p.tz
	s := p.s
	for tok := tz.Next(); tok.Kind != script.EndOfFile; tok = tz.Next() {
		switch {
		case tok.Is("Variable"):
			if err := p.variable(s.vars); err != nil {
				return err
			}
		case tok.Is("Effect"):
			name, err := p.nameArgument()
			if err != nil {
				return err
			}
			e, _ := s.effect(name.Text)
			if err := p.effectBody(e); err != nil {
				return err
			}
		case tok.Is("Track"):
			name, err := p.nameArgument()
			if err != nil {
				return err
			}
			t, _ := s.track(name.Text)
			if err := p.track(t); err != nil {
				return err
			}
		default:
			handled, err := s.Updatable.ParseElement(tok, tz, s.table, s.scope())
			if err != nil {
				return err
			}
			if !handled {
				return script.Unexpected(tok)
			}
		}
	}
	return nil
}

func (p *parser) effectBody(e *Effect) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	for {
		tok := tz.Next()
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Stage"):
			stage, err := parseStage(tz)
			if err != nil {
				return err
			}
			e.stages = append(e.stages, stage)
		default:
			return script.Unexpected(tok)
		}
	}
}

func (p *parser) track(t *Track) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	for {
		tok := tz.Next()
		var err error
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Variable"):
			err = p.variable(t.vars)
		case tok.Is("Volume"):
			err = p.initial(t.vars, "Volume")
		case tok.Is("BeatLength"):
			err = p.initial(t.vars, "BeatLength")
		case tok.Is("BarLength"):
			t.barLength, err = p.count()
		case tok.Is("FadeIn"):
			t.fadeIn, err = p.duration()
		case tok.Is("FadeOut"):
			t.fadeOut, err = p.duration()
		case tok.Is("LoopLayer"), tok.Is("AleotoricLayer"):
			var name script.Token
			if name, err = p.nameArgument(); err != nil {
				return err
			}
			l, _ := t.Layer(name.Text)
			switch l := l.(type) {
			case *LoopLayer:
				err = p.loopLayer(t, l)
			case *AleotoricLayer:
				err = p.aleotoricLayer(t, l)
			}
		default:
			var handled bool
			handled, err = t.Updatable.ParseElement(tok, tz, t.s.table, t.scope())
			if err == nil && !handled {
				err = script.Unexpected(tok)
			}
		}
		if err != nil {
			return err
		}
	}
}

func (p *parser) loopLayer(t *Track, l *LoopLayer) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	scope := layerScope(t, l)
	for {
		tok := tz.Next()
		var err error
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Variable"):
			err = p.variable(l.vars)
		case tok.Is("Volume"):
			err = p.initial(l.vars, "Volume")
		case tok.Is("Pan"):
			err = p.initial(l.vars, "Pan")
		case tok.Is("Rate"):
			l.rate, err = p.duration()
		case tok.Is("Wave"):
			var name string
			if name, err = tz.ParseNameArgument(); err == nil {
				l.wave, l.hasWave = p.s.waves.Intern(name), true
			}
		default:
			var handled bool
			handled, err = l.Updatable.ParseElement(tok, tz, p.s.table, scope)
			if err == nil && !handled {
				err = script.Unexpected(tok)
			}
		}
		if err != nil {
			return err
		}
	}
}

func (p *parser) aleotoricLayer(t *Track, l *AleotoricLayer) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartSection); err != nil {
		return err
	}
	scope := layerScope(t, l)
	for {
		tok := tz.Next()
		var err error
		switch {
		case tok.Kind == script.EndSection:
			return nil
		case tok.Is("Variable"):
			err = p.variable(l.vars)
		case tok.Is("Volume"):
			err = p.initial(l.vars, "Volume")
		case tok.Is("Interval"):
			err = p.initial(l.vars, "Interval")
		case tok.Is("BeatSynch"):
			l.beatSynch, err = p.count()
		case tok.Is("Effect"):
			l.effect, err = p.effectArgument()
		case tok.Is("Voice"):
			var v *Voice
			if v, err = parseVoice(p, scope); err == nil {
				l.voices = append(l.voices, v)
			}
		default:
			var handled bool
			handled, err = l.Updatable.ParseElement(tok, tz, p.s.table, scope)
			if err == nil && !handled {
				err = script.Unexpected(tok)
			}
		}
		if err != nil {
			return err
		}
	}
}

// variable parses "( name , initial )" and declares the variable in c.
// Host-owned variables such as Mood cannot be redeclared.
func (p *parser) variable(c *script.VariableContainer) error {
	tz := p.tz
	if _, err := tz.Expect(script.StartArgument); err != nil {
		return err
	}
	name, err := tz.Expect(script.String)
	if err != nil {
		return err
	}
	if _, err := tz.Expect(script.Separator); err != nil {
		return err
	}
	initial, err := tz.Expect(script.Constant)
	if err != nil {
		return err
	}
	if _, err := tz.Expect(script.EndArgument); err != nil {
		return err
	}
	if r, ok := c.Lookup(name.Text); ok && p.s.table.Variable(r).ReadOnly {
		return script.Unexpected(name)
	}
	c.Declare(name.Text, initial.Value)
	return nil
}

// initial parses "( constant )" as the initial value of a built-in variable.
func (p *parser) initial(c *script.VariableContainer, name string) error {
	v, err := p.tz.ParseConstantArgument()
	if err != nil {
		return err
	}
	c.Declare(name, v)
	return nil
}

func (p *parser) duration() (float64, error) {
	start := p.tz.Lookahead()
	v, err := p.tz.ParseConstantArgument()
	if err == nil && v < 0 {
		err = script.Unexpected(start)
	}
	return v, err
}

func (p *parser) count() (int, error) {
	v, err := p.duration()
	return int(v), err
}

func (p *parser) nameArgument() (script.Token, error) {
	tok, err := p.tz.ParseArgument()
	if err != nil {
		return tok, err
	}
	if tok.Kind != script.String && tok.Kind != script.ScopedString {
		return tok, script.Unexpected(tok)
	}
	return tok, nil
}

func (p *parser) effectArgument() (*Effect, error) {
	name, err := p.nameArgument()
	if err != nil {
		return nil, err
	}
	e, ok := p.s.effect(name.Text)
	if !ok {
		return nil, script.Unexpected(name)
	}
	return e, nil
}
