package script_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mnglab/mng/script"
	"gopkg.in/yaml.v2"
)

const epsilon = 1e-9

type expressionCase struct {
	Name string
	Vars map[string]float64
	Expr string
	Want float64
}

func TestExpressionRegressionTable(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "expressions.yml"))
	if err != nil {
		t.Fatalf("cannot read the fixture: %v", err)
	}
	var cases []expressionCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		t.Fatalf("could not parse the .yml file: %v", err)
	}
	if len(cases) == 0 {
		t.Fatalf("fixture has no cases")
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			table := script.NewTable(1)
			manager := table.NewScope("manager")
			for name, v := range c.Vars {
				manager.Declare(name, v)
			}
			expr, err := script.ParseExpression(script.NewTokenizer(c.Expr), table, script.Scope{Manager: manager})
			if err != nil {
				t.Fatalf("ParseExpression(%q) failed: %v", c.Expr, err)
			}
			if got := expr.Evaluate(table); math.Abs(got-c.Want) > epsilon {
				t.Fatalf("%s = %v, want %v", c.Expr, got, c.Want)
			}
		})
	}
}

func TestZeroDivisorForAnyDividend(t *testing.T) {
	table := script.NewTable(1)
	manager := table.NewScope("manager")
	for _, op := range []string{"Divide", "Mod", "Div"} {
		for _, a := range []float64{0, 1, -1, 123.5, math.MaxFloat64} {
			manager.Declare("a", a)
			expr, err := script.ParseExpression(script.NewTokenizer(op+"(a, 0)"), table, script.Scope{Manager: manager})
			if err != nil {
				t.Fatalf("parse %v: %v", op, err)
			}
			if got := expr.Evaluate(table); got != 0 {
				t.Errorf("%v(%v, 0) = %v, want 0", op, a, got)
			}
		}
	}
}

func TestRandomStaysInRange(t *testing.T) {
	table := script.NewTable(42)
	manager := table.NewScope("manager")
	lo := manager.Declare("lo", 0)
	hi := manager.Declare("hi", 0)
	expr := script.NewExpression(script.Random, script.VariableOperand(lo), script.VariableOperand(hi))
	ranges := [][2]float64{{0, 1}, {-1, 1}, {5, 5}, {-3.5, -3.25}, {0, 1000}}
	for _, r := range ranges {
		table.Set(lo, r[0])
		table.Set(hi, r[1])
		for i := 0; i < 1000; i++ {
			v := expr.Evaluate(table)
			if v < r[0] || v > r[1] {
				t.Fatalf("Random(%v, %v) = %v, outside the range", r[0], r[1], v)
			}
			if r[0] == r[1] && v != r[0] {
				t.Fatalf("Random(%v, %v) = %v, want exactly %v", r[0], r[1], v, r[0])
			}
		}
	}
}

func TestEveryLiteralGetsItsOwnConstant(t *testing.T) {
	table := script.NewTable(1)
	scope := script.Scope{Manager: table.NewScope("manager")}
	for _, src := range []string{"Add(1, 1)", "1", "Multiply(2, 1)"} {
		if _, err := script.ParseExpression(script.NewTokenizer(src), table, scope); err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
	}
	if got := table.NumConstants(); got != 5 {
		t.Fatalf("constant pool has %d entries, want 5", got)
	}
}

func TestExpressionSyntaxErrors(t *testing.T) {
	sources := map[string]string{
		"unknown variable":     "Add(nothing, 1)",
		"missing separator":    "Add(1 2)",
		"missing close":        "Add(1, 2",
		"nested expression":    "Add(Add(1, 2), 3)",
		"section instead":      "{",
		"scoped outside track": "Add(Bass_Volume, 1)",
		"lone minus":           "Add(-, 1)",
		"trailing dot":         "Add(1., 1)",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			table := script.NewTable(1)
			scope := script.Scope{Manager: table.NewScope("manager")}
			_, err := script.ParseExpression(script.NewTokenizer(src), table, scope)
			if !errors.Is(err, script.ErrSyntax) {
				t.Fatalf("ParseExpression(%q) error = %v, want a syntax error", src, err)
			}
		})
	}
}

func TestScopedResolution(t *testing.T) {
	table := script.NewTable(1)
	manager := table.NewScope("manager")
	track := table.NewScope("T")
	bass := table.NewScope("Bass")
	bass.Declare("Volume", 0.5)
	track.Declare("Volume", 0.25)
	manager.Declare("Volume", 1)
	layers := map[string]*script.VariableContainer{script.FoldName("Bass"): bass}
	scope := script.Scope{
		Track:   track,
		Manager: manager,
		Siblings: func(name string) (*script.VariableContainer, bool) {
			c, ok := layers[script.FoldName(name)]
			return c, ok
		},
	}
	expr, err := script.ParseExpression(script.NewTokenizer("Bass_Volume"), table, scope)
	if err != nil {
		t.Fatalf("parse Bass_Volume: %v", err)
	}
	if got := expr.Evaluate(table); got != 0.5 {
		t.Errorf("Bass_Volume = %v, want 0.5", got)
	}
	expr, err = script.ParseExpression(script.NewTokenizer("Volume"), table, scope)
	if err != nil {
		t.Fatalf("parse Volume: %v", err)
	}
	if got := expr.Evaluate(table); got != 0.25 {
		t.Errorf("Volume resolved to %v, want the track's 0.25", got)
	}
	for _, src := range []string{"Drums_Volume", "Bass_Pan"} {
		if _, err := script.ParseExpression(script.NewTokenizer(src), table, scope); !errors.Is(err, script.ErrSyntax) {
			t.Errorf("parse %v error = %v, want a syntax error", src, err)
		}
	}
}
