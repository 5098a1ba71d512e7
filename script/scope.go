package script

// Scope is the set of variable containers visible at one point of a script.
// Plain names resolve through Layer, then Track, then Manager; nil
// containers are skipped. Siblings resolves the layer half of a scoped
// layer_variable name within the enclosing track.
type Scope struct {
	Layer    *VariableContainer
	Track    *VariableContainer
	Manager  *VariableContainer
	Siblings func(layer string) (*VariableContainer, bool)
}

// Innermost returns the innermost non-nil container.
func (s Scope) Innermost() *VariableContainer {
	switch {
	case s.Layer != nil:
		return s.Layer
	case s.Track != nil:
		return s.Track
	}
	return s.Manager
}

// Lookup resolves a plain name without failing.
func (s Scope) Lookup(name string) (Ref, bool) {
	for _, c := range [...]*VariableContainer{s.Layer, s.Track, s.Manager} {
		if c == nil {
			continue
		}
		if r, ok := c.Lookup(name); ok {
			return r, true
		}
	}
	return Ref{}, false
}

// Resolve turns a String or ScopedString token into a variable handle. A
// name that resolves nowhere is a syntax error, as is a scoped name whose
// layer or variable does not exist.
func (s Scope) Resolve(tok Token) (Ref, error) {
	switch tok.Kind {
	case String:
		if r, ok := s.Lookup(tok.Text); ok {
			return r, nil
		}
	case ScopedString:
		if s.Siblings == nil {
			break
		}
		layer, name := tok.Split()
		c, ok := s.Siblings(layer)
		if !ok {
			break
		}
		if r, ok := c.Lookup(name); ok {
			return r, nil
		}
	}
	return Ref{}, Unexpected(tok)
}
