package engine

import (
	"slices"
	"testing"

	"github.com/hailam/adjacency/internal/board"
)

func mustLayout(t *testing.T, layout string) *board.Position {
	t.Helper()
	pos, err := board.ParseLayout(layout)
	if err != nil {
		t.Fatalf("ParseLayout(%q): %v", layout, err)
	}
	return pos
}

// minimax is a plain full-width reference search.
func minimax(pos *board.Position, searching board.Mark, depth int) int {
	if depth == 0 || pos.IsTerminal() {
		return pos.Evaluate(searching)
	}
	maximizing := pos.SideToMove() == searching
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	for _, m := range pos.EmptyCells() {
		next, err := pos.Child(m)
		if err != nil {
			panic(err)
		}
		v := minimax(next, searching, depth-1)
		if (maximizing && v > best) || (!maximizing && v < best) {
			best = v
		}
	}
	return best
}

// rootValues returns the reference minimax value of every root move.
func rootValues(pos *board.Position, depth int) map[board.Move]int {
	values := make(map[board.Move]int)
	for _, m := range pos.EmptyCells() {
		next, _ := pos.Child(m)
		values[m] = minimax(next, pos.SideToMove(), depth-1)
	}
	return values
}

func argmax(values map[board.Move]int) (int, []board.Move) {
	best := -Infinity
	var moves []board.Move
	for m, v := range values {
		switch {
		case v > best:
			best = v
			moves = []board.Move{m}
		case v == best:
			moves = append(moves, m)
		}
	}
	slices.Sort(moves)
	return best, moves
}

func never() bool { return false }

func TestFindBestSingleCell(t *testing.T) {
	pos := mustLayout(t, "XO/O. x 1")

	s := NewSearcher(NewRand(1))
	result := s.FindBest(pos, 1)

	if result.Move != board.NewMove(1, 1) {
		t.Errorf("expected move (1, 1), got %v", result.Move)
	}
	if result.Score != 4 {
		t.Errorf("expected score 4, got %d", result.Score)
	}
	if !result.Completed {
		t.Error("expected a completed search")
	}
}

func TestFindBestMatchesMinimax(t *testing.T) {
	tests := []struct {
		name   string
		layout string
	}{
		{"corners", "X../.../..O x 2"},
		{"crowded", "XO./O.X/..O o 2"},
		{"empty", ".../.../... x 2"},
		{"wide", "X...O/.O.X./....X o 2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustLayout(t, tc.layout)
			wantScore, wantMoves := argmax(rootValues(pos, 2))

			s := NewSearcher(NewRand(7))
			result := s.FindBest(pos, 2)

			if result.Score != wantScore {
				t.Errorf("score = %d, want %d", result.Score, wantScore)
			}
			got := slices.Clone(result.Candidates)
			slices.Sort(got)
			if !slices.Equal(got, wantMoves) {
				t.Errorf("candidates = %v, want %v", got, wantMoves)
			}
			if !slices.Contains(result.Candidates, result.Move) {
				t.Errorf("move %v is not among the candidates", result.Move)
			}
		})
	}
}

func TestSearchIterationDepths(t *testing.T) {
	pos := mustLayout(t, "X../.../..O x 5")

	var depths []int
	s := NewSearcher(NewRand(3))
	s.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		if !info.Completed {
			t.Errorf("depth %d reported as incomplete", info.Depth)
		}
	}
	result := s.Search(pos, never, 5)

	if !slices.Equal(depths, []int{2, 4, 5}) {
		t.Errorf("iteration depths = %v, want [2 4 5]", depths)
	}
	if !pos.IsLegal(result.Move) {
		t.Errorf("illegal move %v", result.Move)
	}
	if !result.Completed {
		t.Error("expected the accepted result to be complete")
	}
}

func TestSearchShallow(t *testing.T) {
	pos := mustLayout(t, "XO/O. x 1")

	var depths []int
	s := NewSearcher(NewRand(3))
	s.OnInfo = func(info SearchInfo) { depths = append(depths, info.Depth) }
	result := s.Search(pos, never, 1)

	if !slices.Equal(depths, []int{1}) {
		t.Errorf("iteration depths = %v, want [1]", depths)
	}
	if result.Move != board.NewMove(1, 1) || result.Score != 4 {
		t.Errorf("got %v score %d, want (1, 1) score 4", result.Move, result.Score)
	}
}

func TestSearchStoppedBeforeStart(t *testing.T) {
	pos := mustLayout(t, "X../.../..O x 4")

	s := NewSearcher(NewRand(3))
	result := s.Search(pos, func() bool { return true }, 4)

	if !pos.IsLegal(result.Move) {
		t.Fatalf("illegal fallback move %v", result.Move)
	}
	if result.Completed {
		t.Error("a search stopped before any candidate finished must not be complete")
	}
}

func TestAdopt(t *testing.T) {
	s := NewSearcher(NewRand(1))
	shallow := Result{Move: board.NewMove(0, 0), Score: 3, Depth: 2, Completed: true}

	tests := []struct {
		name string
		next Result
		want board.Move
	}{
		{"aborted", Result{Move: board.NewMove(1, 1), Score: 9, Depth: 4}, board.NewMove(0, 0)},
		{"better", Result{Move: board.NewMove(1, 1), Score: 5, Depth: 4, Completed: true}, board.NewMove(1, 1)},
		{"tie goes deeper", Result{Move: board.NewMove(1, 1), Score: 3, Depth: 4, Completed: true}, board.NewMove(1, 1)},
		{"worse", Result{Move: board.NewMove(1, 1), Score: 1, Depth: 4, Completed: true}, board.NewMove(0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.adopt(shallow, tc.next).Move; got != tc.want {
				t.Errorf("adopt = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPromote(t *testing.T) {
	pos := mustLayout(t, ".../.../... x 2")
	children := expand(pos)
	target := children[4].move

	if !promote(children, target) {
		t.Fatal("expected promote to find the move")
	}
	if children[0].move != target {
		t.Errorf("expected %v first, got %v", target, children[0].move)
	}
	for i := 1; i < len(children); i++ {
		if children[i].move == target {
			t.Errorf("move %v duplicated at index %d", target, i)
		}
	}
	if promote(children, board.NoMove) {
		t.Error("promote should report a missing move")
	}
}

func TestTranspositionTable(t *testing.T) {
	tt := NewTranspositionTable(16)

	if _, ok := tt.Probe(42); ok {
		t.Fatal("expected miss on empty table")
	}
	tt.Store(42, board.NewMove(2, 3), -5)
	entry, ok := tt.Probe(42)
	if !ok || entry.BestMove != board.NewMove(2, 3) || entry.Score != -5 {
		t.Errorf("unexpected entry %+v (ok=%v)", entry, ok)
	}
	if tt.Hits() != 1 || tt.HitRate() != 50 {
		t.Errorf("hits = %d, rate = %.1f", tt.Hits(), tt.HitRate())
	}

	tt.Clear()
	if tt.Len() != 0 || tt.Hits() != 0 {
		t.Error("Clear should reset entries and stats")
	}
}

func TestFindBestTieBreakIsUniform(t *testing.T) {
	// Every first move on an empty board scores 1 at depth 1.
	pos := mustLayout(t, ".../.../... x 3")

	const draws = 900
	counts := make(map[board.Move]int)
	s := NewSearcher(NewRand(17))
	for i := 0; i < draws; i++ {
		result := s.FindBest(pos, 1)
		if len(result.Candidates) != 9 {
			t.Fatalf("expected 9 tied candidates, got %v", result.Candidates)
		}
		counts[result.Move]++
	}

	if len(counts) != 9 {
		t.Fatalf("only %d of 9 tied moves were ever chosen: %v", len(counts), counts)
	}
	for m, n := range counts {
		// Expected 100 per cell; 50 is more than five standard deviations away.
		if n < 50 {
			t.Errorf("move %v chosen %d times out of %d", m, n, draws)
		}
	}
}

func TestFindBestStopAfterLastRootMove(t *testing.T) {
	pos := mustLayout(t, "XO/O. x 1")

	// The single root move is fully scored by the third poll: the loop
	// check, the leaf check and the check after the subtree. Any later
	// stop must not discard the iteration.
	calls := 0
	s := NewSearcher(NewRand(1))
	s.stopped = func() bool {
		calls++
		return calls > 3
	}

	result := s.FindBest(pos, 1)
	if !result.Completed {
		t.Error("an iteration that scored every root move must be complete")
	}
	if result.Move != board.NewMove(1, 1) || result.Score != 4 {
		t.Errorf("got %v score %d, want (1, 1) score 4", result.Move, result.Score)
	}
}

func TestFindBestStopMidIteration(t *testing.T) {
	pos := mustLayout(t, "X../.../..O x 2")

	calls := 0
	s := NewSearcher(NewRand(1))
	s.stopped = func() bool {
		calls++
		return calls > 20
	}

	result := s.FindBest(pos, 2)
	if result.Completed {
		t.Error("an iteration cut short must not be complete")
	}
	if !pos.IsLegal(result.Move) {
		t.Errorf("illegal move %v", result.Move)
	}
}
