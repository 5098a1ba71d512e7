package script

import "golang.org/x/text/cases"

type (
	// ScopeID identifies a VariableContainer within its Table.
	ScopeID int

	// Ref is a stable handle to a variable: the container that owns it and
	// the slot within the container. Slots are never reused or reordered, so
	// a Ref stays valid for the lifetime of its Table.
	Ref struct {
		Scope ScopeID
		Slot  int
	}

	// Variable is a named float cell. Reset returns Value to Initial.
	Variable struct {
		Name     string
		Value    float64
		Initial  float64
		ReadOnly bool // scripts may read but not assign the variable
	}

	// VariableContainer owns the variables of one scope: a layer, a track or
	// the manager. Names match case-insensitively.
	VariableContainer struct {
		id    ScopeID
		name  string
		vars  []Variable
		index map[string]int
	}
)

// FoldName returns the key under which a name is matched case-insensitively.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

func (c *VariableContainer) ID() ScopeID  { return c.id }
func (c *VariableContainer) Name() string { return c.name }
func (c *VariableContainer) Len() int     { return len(c.vars) }

// Declare adds a variable, or, if one of that name already exists, sets its
// initial and current value.
func (c *VariableContainer) Declare(name string, initial float64) Ref {
	key := FoldName(name)
	if i, ok := c.index[key]; ok {
		c.vars[i].Initial = initial
		c.vars[i].Value = initial
		return Ref{Scope: c.id, Slot: i}
	}
	c.index[key] = len(c.vars)
	c.vars = append(c.vars, Variable{Name: name, Value: initial, Initial: initial})
	return Ref{Scope: c.id, Slot: len(c.vars) - 1}
}

// DeclareReadOnly declares a variable that the host updates and scripts
// may only read.
func (c *VariableContainer) DeclareReadOnly(name string, initial float64) Ref {
	r := c.Declare(name, initial)
	c.vars[r.Slot].ReadOnly = true
	return r
}

func (c *VariableContainer) Lookup(name string) (Ref, bool) {
	i, ok := c.index[FoldName(name)]
	if !ok {
		return Ref{}, false
	}
	return Ref{Scope: c.id, Slot: i}, true
}

// Get returns the current value of the named variable.
func (c *VariableContainer) Get(name string) (float64, bool) {
	r, ok := c.Lookup(name)
	if !ok {
		return 0, false
	}
	return c.vars[r.Slot].Value, true
}

// Set assigns the named variable, read-only or not. It reports whether the
// variable exists.
func (c *VariableContainer) Set(name string, value float64) bool {
	r, ok := c.Lookup(name)
	if !ok {
		return false
	}
	c.vars[r.Slot].Value = value
	return true
}

// Value returns the current value of a slot of this container.
func (c *VariableContainer) Value(r Ref) float64 {
	return c.vars[r.Slot].Value
}

func (c *VariableContainer) SetValue(r Ref, value float64) {
	c.vars[r.Slot].Value = value
}

// Reset returns every variable to its initial value.
func (c *VariableContainer) Reset() {
	for i := range c.vars {
		c.vars[i].Value = c.vars[i].Initial
	}
}

// Variables returns a copy of the variables in declaration order.
func (c *VariableContainer) Variables() []Variable {
	ret := make([]Variable, len(c.vars))
	copy(ret, c.vars)
	return ret
}
