package script_test

import (
	"errors"
	"testing"

	"github.com/mnglab/mng/script"
)

func TestActionRunsInOrder(t *testing.T) {
	table := script.NewTable(1)
	manager := table.NewScope("manager")
	manager.Declare("a", 1)
	manager.Declare("b", 0)
	scope := script.Scope{Manager: manager}
	action, err := script.ParseAction(script.NewTokenizer("{ a = Add(a, 1), b = Multiply(a, 10) a = 0.5 }"), table, scope)
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if len(action.Commands) != 3 {
		t.Fatalf("parsed %d commands, want 3", len(action.Commands))
	}
	action.Perform(table)
	if b, _ := manager.Get("b"); b != 20 {
		t.Errorf("b = %v, want 20 (the value a had after the first command, times ten)", b)
	}
	if a, _ := manager.Get("a"); a != 0.5 {
		t.Errorf("a = %v, want 0.5", a)
	}
}

func TestActionRejectsReadOnlyTargets(t *testing.T) {
	table := script.NewTable(1)
	manager := table.NewScope("manager")
	manager.DeclareReadOnly("Mood", 0)
	_, err := script.ParseAction(script.NewTokenizer("{ Mood = 1 }"), table, script.Scope{Manager: manager})
	if !errors.Is(err, script.ErrSyntax) {
		t.Fatalf("assigning Mood: error = %v, want a syntax error", err)
	}
	action, err := script.ParseAction(script.NewTokenizer("{ }"), table, script.Scope{Manager: manager})
	if err != nil || len(action.Commands) != 0 {
		t.Fatalf("empty action = %v, %v", action, err)
	}
}

func TestCollectTargets(t *testing.T) {
	src := "{ x = Add(y, 1), Bass_Volume = 0 z = Equals(x, 2) } rest"
	tz := script.NewTokenizer(src)
	targets, err := script.CollectTargets(tz)
	if err != nil {
		t.Fatalf("CollectTargets: %v", err)
	}
	want := []string{"x", "Bass_Volume", "z"}
	if len(targets) != len(want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
	for i, tok := range targets {
		if tok.Text != want[i] {
			t.Errorf("target %d = %q, want %q", i, tok.Text, want[i])
		}
	}
	if tok := tz.Next(); tok.Text != "rest" {
		t.Errorf("CollectTargets consumed past the section, next = %q", tok.Text)
	}
}

func TestUpdatableRate(t *testing.T) {
	table := script.NewTable(1)
	manager := table.NewScope("manager")
	manager.Declare("count", 0)
	scope := script.Scope{Manager: manager}
	var u script.Updatable
	tz := script.NewTokenizer("Initialise { count = 100 } Update { count = Add(count, 1) } UpdateRate(1)")
	for tok := tz.Next(); tok.Kind != script.EndOfFile; tok = tz.Next() {
		handled, err := u.ParseElement(tok, tz, table, scope)
		if err != nil || !handled {
			t.Fatalf("ParseElement(%v) = %v, %v", tok, handled, err)
		}
	}
	u.Start(table, 10)
	ticks := []struct {
		now  float64
		want float64
	}{
		{10, 101},   // first update is due at start
		{10.5, 101}, // not yet
		{11, 102},
		{13.9, 103}, // a late tick fires once, the next is due at 13
		{13.95, 104},
		{14, 105},
		{14.5, 105},
	}
	for _, tick := range ticks {
		u.Tick(table, tick.now)
		if got, _ := manager.Get("count"); got != tick.want {
			t.Fatalf("at %v count = %v, want %v", tick.now, got, tick.want)
		}
	}
}

func TestUpdatableZeroRateRunsEveryTick(t *testing.T) {
	table := script.NewTable(1)
	manager := table.NewScope("manager")
	manager.Declare("count", 0)
	action, err := script.ParseAction(script.NewTokenizer("{ count = Add(count, 1) }"), table, script.Scope{Manager: manager})
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	u := script.Updatable{Update: action}
	u.Start(table, 0)
	for i := 0; i < 5; i++ {
		u.Tick(table, 0.01*float64(i))
	}
	if got, _ := manager.Get("count"); got != 5 {
		t.Fatalf("count = %v, want 5", got)
	}
}
