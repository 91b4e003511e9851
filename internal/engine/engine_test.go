package engine

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/adjacency/internal/board"
)

func TestStrategyNames(t *testing.T) {
	want := []string{"human", "random", "greedy", "minimax", "beam", "genetic"}
	if got := StrategyNames(); !slices.Equal(got, want) {
		t.Errorf("StrategyNames() = %v, want %v", got, want)
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("human", Options{})
	if s != nil || err != nil {
		t.Errorf("human: got (%v, %v), want (nil, nil)", s, err)
	}

	if _, err := NewStrategy("alphazero", Options{}); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	s, err = NewStrategy("Minimax", Options{MaxDepth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := s.(*Minimax); !ok || m.MaxDepth != 3 {
		t.Errorf("expected *Minimax with MaxDepth 3, got %#v", s)
	}

	s, err = NewStrategy(NameLocalBeam, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b := s.(*LocalBeam); b.Width != DefaultBeamWidth {
		t.Errorf("beam width = %d, want %d", b.Width, DefaultBeamWidth)
	}

	s, err = NewStrategy(NameGenetic, Options{Population: 8})
	if err != nil {
		t.Fatal(err)
	}
	g := s.(*Genetic)
	if g.Population != 8 || g.Generations != DefaultGenerations || g.MutationRate != DefaultMutationRate {
		t.Errorf("unexpected genetic parameters %+v", g)
	}

	for _, name := range StrategyNames()[1:] {
		s, err := NewStrategy(name, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if s.Name() != name {
			t.Errorf("NewStrategy(%q).Name() = %q", name, s.Name())
		}
	}
}

func TestEngineHumanPlayer(t *testing.T) {
	e := NewEngine(Options{})
	pos := mustLayout(t, "X../.../..O x 2")

	if _, err := e.ProposeMove(context.Background(), pos, NameHuman); !errors.Is(err, ErrHumanPlayer) {
		t.Errorf("expected ErrHumanPlayer, got %v", err)
	}
}

func TestEngineRespectsMoveTime(t *testing.T) {
	e := NewEngine(Options{Seed: 3})
	e.SetLimits(SearchLimits{MoveTime: 100 * time.Millisecond})

	pos, err := board.NewStandardPosition(10, board.MarkX)
	if err != nil {
		t.Fatal(err)
	}

	var infos int
	e.OnInfo = func(SearchInfo) { infos++ }

	d, err := e.ProposeMove(context.Background(), pos, NameMinimax)
	if err != nil {
		t.Fatal(err)
	}
	if !pos.IsLegal(d.Move) {
		t.Errorf("illegal move %v", d.Move)
	}
	if d.Strategy != NameMinimax {
		t.Errorf("strategy = %q", d.Strategy)
	}
	if d.Elapsed > 3*time.Second {
		t.Errorf("search ran %v past a 100ms budget", d.Elapsed)
	}
	if !d.TimedOut {
		t.Errorf("a search stopped by its budget should report a timeout (elapsed %v)", d.Elapsed)
	}
	if infos == 0 {
		t.Error("expected at least one info report")
	}
	if e.Searching() {
		t.Error("engine still reports an active search")
	}
}

func TestEngineDepthLimitNotTimedOut(t *testing.T) {
	e := NewEngine(Options{Seed: 1})
	e.SetLimits(SearchLimits{Depth: 1, MoveTime: time.Minute})

	d, err := e.ProposeMove(context.Background(), mustLayout(t, "X../.../..O x 2"), NameMinimax)
	if err != nil {
		t.Fatal(err)
	}
	if d.TimedOut {
		t.Errorf("a depth-limited search finished in %v but reports a timeout", d.Elapsed)
	}
}

func TestEngineStopBeforeStrategyStarts(t *testing.T) {
	e := NewEngine(Options{Seed: 5})
	e.SetLimits(SearchLimits{Infinite: true})
	// The stop lands after the search is registered but before the
	// strategy resets its own stop flag.
	e.starting = e.Stop

	pos, err := board.NewStandardPosition(10, board.MarkX)
	if err != nil {
		t.Fatal(err)
	}

	type outcome struct {
		d   Decision
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		d, err := e.ProposeMove(context.Background(), pos, NameMinimax)
		done <- outcome{d, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			t.Fatal(out.err)
		}
		if !pos.IsLegal(out.d.Move) {
			t.Errorf("illegal move %v", out.d.Move)
		}
	case <-time.After(5 * time.Second):
		e.Stop()
		t.Fatal("an early stop was lost and the unbounded search kept running")
	}
}

func TestEngineDifficulty(t *testing.T) {
	e := NewEngine(Options{})
	if got := e.Limits(); got != DifficultySettings[Hard] {
		t.Errorf("default limits = %+v, want hard", got)
	}

	e.SetLimits(SearchLimits{Depth: 1})
	e.SetDifficulty(Easy)
	if got := e.Limits(); got != DifficultySettings[Easy] {
		t.Errorf("SetDifficulty should drop explicit limits, got %+v", got)
	}

	for _, d := range []Difficulty{Easy, Medium, Hard} {
		parsed, err := ParseDifficulty(d.String())
		if err != nil || parsed != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), parsed, err)
		}
	}
	if _, err := ParseDifficulty("insane"); err == nil {
		t.Error("expected an error for an unknown difficulty")
	}
}

func TestEngineDepthLimit(t *testing.T) {
	e := NewEngine(Options{Seed: 1})
	e.SetLimits(SearchLimits{Depth: 2, Infinite: true})

	var depths []int
	e.OnInfo = func(info SearchInfo) { depths = append(depths, info.Depth) }

	pos := mustLayout(t, "X../.../..O x 6")
	if _, err := e.ProposeMove(context.Background(), pos, NameMinimax); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(depths, []int{2}) {
		t.Errorf("depths = %v, want [2]", depths)
	}
}

func TestTimeManager(t *testing.T) {
	tm := NewTimeManager()

	tm.Init(SearchLimits{Infinite: true, MoveTime: time.Second})
	if tm.Budget() != 0 || tm.ShouldStop() || tm.Remaining() >= 0 {
		t.Error("infinite search should have no budget")
	}

	tm.Init(SearchLimits{MoveTime: time.Second})
	if b := tm.Budget(); b <= 900*time.Millisecond || b > time.Second {
		t.Errorf("budget = %v", b)
	}

	tm.Init(SearchLimits{MoveTime: time.Millisecond})
	time.Sleep(5 * time.Millisecond)
	if !tm.ShouldStop() || tm.Remaining() != 0 {
		t.Error("expected an exhausted budget")
	}
}
