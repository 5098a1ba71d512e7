package script

import (
	"math"
	"strings"
)

type (
	// Operator is the operation of an Expression. None passes the first
	// operand through unchanged.
	Operator int

	// Operand refers to either a variable or a pooled constant of a Table.
	Operand struct {
		constant bool
		ref      Ref
		slot     int
	}

	// Expression is an operator applied to up to two operands. Expressions are
	// immutable once parsed and may be evaluated any number of times.
	Expression struct {
		op   Operator
		args [2]Operand
	}
)

const (
	None Operator = iota
	Add
	Subtract
	Multiply
	Divide
	Mod
	Div
	Random
	SineWave
	CosineWave
	Less
	LessEquals
	Greater
	GreaterEquals
	Equals
)

var operatorNames = map[string]Operator{
	"add":           Add,
	"subtract":      Subtract,
	"multiply":      Multiply,
	"divide":        Divide,
	"mod":           Mod,
	"div":           Div,
	"random":        Random,
	"sinewave":      SineWave,
	"cosinewave":    CosineWave,
	"less":          Less,
	"lessequals":    LessEquals,
	"greater":       Greater,
	"greaterequals": GreaterEquals,
	"equals":        Equals,
}

// LookupOperator returns the operator with the given name, ignoring case.
func LookupOperator(name string) (Operator, bool) {
	op, ok := operatorNames[strings.ToLower(name)]
	return op, ok
}

// ConstantOperand returns an operand for a new pooled constant.
func ConstantOperand(t *Table, value float64) Operand {
	return Operand{constant: true, slot: t.Constant(value)}
}

// VariableOperand returns an operand reading a variable.
func VariableOperand(r Ref) Operand {
	return Operand{ref: r}
}

func (o Operand) value(t *Table) float64 {
	if o.constant {
		return t.ConstantValue(o.slot)
	}
	return t.Value(o.ref)
}

// NewExpression builds an expression from already resolved operands.
func NewExpression(op Operator, a, b Operand) *Expression {
	return &Expression{op: op, args: [2]Operand{a, b}}
}

// ParseExpression parses
//
//	Expr := RValue | Operator '(' RValue ',' RValue ')'
//	RValue := Constant | Name | Layer_Name
//
// Names are resolved against scope while parsing; literals are pooled in t.
func ParseExpression(tz *Tokenizer, t *Table, scope Scope) (*Expression, error) {
	tok := tz.Next()
	if tok.Kind == String {
		if op, ok := LookupOperator(tok.Text); ok && tz.Lookahead().Kind == StartArgument {
			tz.Next()
			a, err := parseRValue(tz, t, scope)
			if err != nil {
				return nil, err
			}
			if _, err := tz.Expect(Separator); err != nil {
				return nil, err
			}
			b, err := parseRValue(tz, t, scope)
			if err != nil {
				return nil, err
			}
			if _, err := tz.Expect(EndArgument); err != nil {
				return nil, err
			}
			return NewExpression(op, a, b), nil
		}
	}
	a, err := rvalue(tok, t, scope)
	if err != nil {
		return nil, err
	}
	return &Expression{op: None, args: [2]Operand{a}}, nil
}

func parseRValue(tz *Tokenizer, t *Table, scope Scope) (Operand, error) {
	return rvalue(tz.Next(), t, scope)
}

func rvalue(tok Token, t *Table, scope Scope) (Operand, error) {
	switch tok.Kind {
	case Constant:
		return ConstantOperand(t, tok.Value), nil
	case String, ScopedString:
		r, err := scope.Resolve(tok)
		if err != nil {
			return Operand{}, err
		}
		return VariableOperand(r), nil
	}
	return Operand{}, Unexpected(tok)
}

func (e *Expression) Operator() Operator {
	return e.op
}

// Evaluate computes the expression from the current contents of its
// variables. It never fails: a zero divisor or wavelength yields 0.
func (e *Expression) Evaluate(t *Table) float64 {
	a := e.args[0].value(t)
	if e.op == None {
		return a
	}
	b := e.args[1].value(t)
	switch e.op {
	case Add:
		return a + b
	case Subtract:
		return a - b
	case Multiply:
		return a * b
	case Divide:
		if b == 0 {
			return 0
		}
		return a / b
	case Mod:
		if b == 0 {
			return 0
		}
		return a - b*math.Floor(a/b)
	case Div:
		if b == 0 {
			return 0
		}
		return math.Floor(a / b)
	case Random:
		return t.Random(a, b)
	case SineWave:
		if b == 0 {
			return 0
		}
		return math.Sin(a / b * 2 * math.Pi)
	case CosineWave:
		if b == 0 {
			return 0
		}
		return math.Cos(a / b * 2 * math.Pi)
	case Less:
		return truth(a < b)
	case LessEquals:
		return truth(a <= b)
	case Greater:
		return truth(a > b)
	case GreaterEquals:
		return truth(a >= b)
	case Equals:
		return truth(a == b)
	}
	return 0
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
