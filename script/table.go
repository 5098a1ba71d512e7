package script

import "math/rand/v2"

// Table owns everything that compiled expressions refer to: the variable
// containers of one loaded script, the pool of literal constants and the
// random source used by Random(). One Table exists per loaded script and is
// passed by reference to everything that evaluates.
type Table struct {
	scopes    []*VariableContainer
	constants []float64
	rand      *rand.Rand
}

// NewTable returns an empty table whose random source is seeded with seed.
func NewTable(seed uint64) *Table {
	return &Table{rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewScope creates a variable container registered with the table.
func (t *Table) NewScope(name string) *VariableContainer {
	c := &VariableContainer{id: ScopeID(len(t.scopes)), name: name, index: map[string]int{}}
	t.scopes = append(t.scopes, c)
	return c
}

// Scope returns the container for id, or nil if id is unknown.
func (t *Table) Scope(id ScopeID) *VariableContainer {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

func (t *Table) Value(r Ref) float64 {
	return t.scopes[r.Scope].vars[r.Slot].Value
}

func (t *Table) Set(r Ref, value float64) {
	t.scopes[r.Scope].vars[r.Slot].Value = value
}

func (t *Table) Variable(r Ref) Variable {
	return t.scopes[r.Scope].vars[r.Slot]
}

// Constant pools a literal and returns its slot. Every literal occurrence
// gets a slot of its own.
func (t *Table) Constant(value float64) int {
	t.constants = append(t.constants, value)
	return len(t.constants) - 1
}

func (t *Table) ConstantValue(slot int) float64 {
	return t.constants[slot]
}

// NumConstants returns the size of the constant pool.
func (t *Table) NumConstants() int {
	return len(t.constants)
}

// Random returns a uniform sample from [min,max). Random(k,k) is exactly k.
func (t *Table) Random(min, max float64) float64 {
	if min == max {
		return min
	}
	v := min + t.rand.Float64()*(max-min)
	if min < max && v > max || min > max && v < max {
		v = max // rounding
	}
	return v
}

// IntN returns a uniform integer in [0,n).
func (t *Table) IntN(n int) int {
	return t.rand.IntN(n)
}
