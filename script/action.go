package script

type (
	// Command assigns the value of an expression to a variable.
	Command struct {
		Target Ref
		Value  *Expression
	}

	// Action is an ordered list of commands performed as one unit.
	Action struct {
		Commands []Command
	}
)

// ParseAction parses a section of assignments:
//
//	'{' [ Name '=' Expr [','] ]... '}'
//
// Assigning a read-only variable is a syntax error.
func ParseAction(tz *Tokenizer, t *Table, scope Scope) (*Action, error) {
	if _, err := tz.Expect(StartSection); err != nil {
		return nil, err
	}
	a := &Action{}
	for {
		tok := tz.Next()
		switch tok.Kind {
		case EndSection:
			return a, nil
		case String, ScopedString:
		default:
			return nil, Unexpected(tok)
		}
		target, err := scope.Resolve(tok)
		if err != nil {
			return nil, err
		}
		if t.Variable(target).ReadOnly {
			return nil, Unexpected(tok)
		}
		if _, err := tz.Expect(Assignment); err != nil {
			return nil, err
		}
		value, err := ParseExpression(tz, t, scope)
		if err != nil {
			return nil, err
		}
		a.Commands = append(a.Commands, Command{Target: target, Value: value})
		if tz.Lookahead().Kind == Separator {
			tz.Next()
		}
	}
}

// Perform evaluates and assigns the commands in order, so a command sees
// the values written by the commands before it.
func (a *Action) Perform(t *Table) {
	if a == nil {
		return
	}
	for _, c := range a.Commands {
		t.Set(c.Target, c.Value.Evaluate(t))
	}
}

// CollectTargets consumes an action section without resolving anything and
// returns the tokens that are assigned to. It is used when pre-parsing, to
// declare assignment targets before any expression is resolved.
func CollectTargets(tz *Tokenizer) ([]Token, error) {
	if _, err := tz.Expect(StartSection); err != nil {
		return nil, err
	}
	var targets []Token
	var prev Token
	depth := 0
	for {
		tok := tz.Next()
		switch tok.Kind {
		case EndSection:
			if depth != 0 {
				return nil, Unexpected(tok)
			}
			return targets, nil
		case StartArgument:
			depth++
		case EndArgument:
			depth--
			if depth < 0 {
				return nil, Unexpected(tok)
			}
		case Assignment:
			if depth == 0 && (prev.Kind == String || prev.Kind == ScopedString) {
				targets = append(targets, prev)
			}
		case StartSection, EndOfFile, Unrecognised:
			return nil, Unexpected(tok)
		}
		prev = tok
	}
}
