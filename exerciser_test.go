package pmap

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// exerciserState is the gopter commands model: a plain Go map standing in
// for what a Map[int,int] should currently contain, split from
// exerciserSystem the way gopter's commands package expects an
// expected-state type to be split from the system under test.
type exerciserState struct {
	entries map[int]int
}

type exerciserSystem struct {
	m *Map[int, int]
}

type setCommand struct {
	key, value int
}

func (c setCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*exerciserSystem)
	sys.m.Set(c.key, c.value)
	return nil
}

func (c setCommand) NextState(state commands.State) commands.State {
	st := state.(*exerciserState)
	st.entries[c.key] = c.value
	return st
}

func (c setCommand) PreCondition(commands.State) bool { return true }

func (c setCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (c setCommand) String() string {
	return fmt.Sprintf("Set(%d, %d)", c.key, c.value)
}

type getCommand struct {
	key int
}

func (c getCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*exerciserSystem)
	return sys.m.Get(c.key)
}

func (c getCommand) NextState(state commands.State) commands.State { return state }

func (c getCommand) PreCondition(commands.State) bool { return true }

func (c getCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	st := state.(*exerciserState)
	expected, ok := st.entries[c.key]
	if !ok {
		expected = -1 // matches the default value used below
	}
	if expected != result.(int) {
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (c getCommand) String() string {
	return fmt.Sprintf("Get(%d)", c.key)
}

// TestExerciserSetGet runs a hand-rolled command sequence through the
// Set/Get PostConditions above in the expected-state-vs-system-under-test
// spirit of gopter's commands package, run directly here rather than
// through gopter's command-generation DSL, since each command type carries
// its own key/value payload rather than being drawn from a single shared
// generator.
func TestExerciserSetGet(t *testing.T) {
	sys := &exerciserSystem{m: New[int, int](-1, nil)}
	state := &exerciserState{entries: map[int]int{}}

	seq := []commands.Command{
		setCommand{1, 100},
		setCommand{2, 200},
		getCommand{1},
		getCommand{3},
		setCommand{1, 101},
		getCommand{1},
		setCommand{2, -1},
		getCommand{2},
	}

	for _, cmd := range seq {
		result := cmd.Run(sys)
		if pr := cmd.PostCondition(state, result); pr.Status != gopter.PropTrue {
			t.Fatalf("postcondition failed for %v: got %v", cmd, result)
		}
		state = cmd.NextState(state).(*exerciserState)
	}
}

func TestPropertyAddThenGetMatchesModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("sequential Set/Get agrees with a plain map model", prop.ForAll(
		func(ops []int) bool {
			m := New[int, int](-1, nil)
			model := map[int]int{}
			for i, v := range ops {
				k := v % 20
				m.Set(k, i)
				model[k] = i
			}
			for k, want := range model {
				if m.Get(k) != want {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(50, gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
