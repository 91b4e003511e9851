package engine

import (
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hailam/adjacency/internal/board"
)

// Infinity bounds every score. Real scores are cell-count differentials and
// never exceed MaxRows*MaxCols in magnitude.
const Infinity = 1 << 30

// SearchInfo describes one completed depth iteration.
type SearchInfo struct {
	Depth     int
	Score     int
	BestMove  board.Move
	Leaves    uint64
	Prunes    uint64
	TTHits    uint64
	PVHits    uint64
	TTSize    int
	CacheSize int
	Time      time.Duration
	Completed bool
}

// Result is the outcome of one fixed-depth search.
type Result struct {
	Move      board.Move
	Score     int
	Depth     int
	Completed bool // false if the iteration was cut short by cancellation

	// Candidates holds every move that reached Score. Move is drawn from it.
	Candidates []board.Move
}

// Searcher performs iterative-deepening alpha-beta search.
//
// A Searcher owns its caches and is meant for a single Search call;
// construct a fresh one per move.
type Searcher struct {
	tt        *TranspositionTable // positions scored at the current depth
	bestMoves *TranspositionTable // best move per position from any earlier iteration
	rng       *frand.RNG
	stopped   func() bool

	// searching is the player the whole search runs for. Leaf scores are
	// always from this player's point of view.
	searching board.Mark

	leaves, prunes, pvHits uint64

	// OnInfo, if set, is called after every depth iteration.
	OnInfo func(SearchInfo)
}

// NewSearcher creates a searcher drawing tie-breaks from rng.
func NewSearcher(rng *frand.RNG) *Searcher {
	return &Searcher{
		tt:        NewTranspositionTable(1 << 12),
		bestMoves: NewTranspositionTable(1 << 12),
		rng:       rng,
		stopped:   func() bool { return false },
	}
}

// Search runs iterative deepening up to maxDepth plies and returns the best
// result of the last fully completed iteration. stopped is polled at every
// node; once it reports true the search unwinds.
func (s *Searcher) Search(pos *board.Position, stopped func() bool, maxDepth int) Result {
	s.stopped = stopped
	s.bestMoves.Clear()

	if maxDepth < 1 {
		maxDepth = 1
	}

	log.Debug().Int("max_depth", maxDepth).Str("layout", pos.Layout()).Msg("starting search")

	initialDepth := min(maxDepth, 2)
	best := s.FindBest(pos, initialDepth)

	for depth := initialDepth + 2; depth < maxDepth; depth += 2 {
		if s.stopped() {
			break
		}
		best = s.adopt(best, s.FindBest(pos, depth))
	}

	if !s.stopped() && initialDepth != maxDepth {
		best = s.adopt(best, s.FindBest(pos, maxDepth))
	}

	log.Debug().
		Str("move", best.Move.String()).
		Int("score", best.Score).
		Int("depth", best.Depth).
		Bool("completed", best.Completed).
		Msg("search stopped")

	return best
}

// adopt decides between the accepted result and a newer iteration. Aborted
// iterations are discarded; among completed ones the greater score wins,
// with the deeper result taking ties.
func (s *Searcher) adopt(prev, next Result) Result {
	if !next.Completed {
		return prev
	}
	if !prev.Completed || next.Score >= prev.Score {
		return next
	}
	return prev
}

// FindBest searches pos to the given depth and returns the best move for the
// side to move. Ties at the best score are broken uniformly at random.
func (s *Searcher) FindBest(pos *board.Position, depth int) Result {
	start := time.Now()
	s.leaves, s.prunes, s.pvHits = 0, 0, 0
	s.tt.Clear()
	s.searching = pos.SideToMove()

	children := expand(pos)
	orderByParent(pos, children)

	if entry, ok := s.bestMoves.Probe(pos.Hash()); ok && promote(children, entry.BestMove) {
		s.pvHits++
		log.Debug().Str("move", entry.BestMove.String()).Msg("searching last best move first")
	}

	alpha, beta := -Infinity, Infinity
	var best []board.Move
	aborted := false

	for _, c := range children {
		if s.stopped() {
			aborted = true
			break
		}

		score := s.minValue(c.pos, alpha, beta, depth-1)
		if s.stopped() {
			// Scores from a cut-short subtree are not trustworthy.
			aborted = true
			break
		}

		if score > alpha {
			alpha = score
			best = best[:0]
		}
		if score == alpha {
			best = append(best, c.move)
		}
	}

	result := Result{Depth: depth, Score: alpha, Completed: !aborted}
	if len(best) == 0 {
		// Cancelled before any candidate finished: fall back to the
		// first move in search order.
		result.Move = children[0].move
		result.Completed = false
	} else {
		result.Candidates = best
		result.Move = best[s.rng.Intn(len(best))]
		s.bestMoves.Store(pos.Hash(), result.Move, result.Score)
	}

	info := SearchInfo{
		Depth:     depth,
		Score:     result.Score,
		BestMove:  result.Move,
		Leaves:    s.leaves,
		Prunes:    s.prunes,
		TTHits:    s.tt.Hits(),
		PVHits:    s.pvHits,
		TTSize:    s.tt.Len(),
		CacheSize: s.bestMoves.Len(),
		Time:      time.Since(start),
		Completed: result.Completed,
	}
	log.Debug().
		Int("depth", depth).
		Uint64("leaves", info.Leaves).
		Uint64("prunes", info.Prunes).
		Uint64("tt_hits", info.TTHits).
		Float64("tt_hit_rate", s.tt.HitRate()).
		Int("tt_size", info.TTSize).
		Uint64("pv_hits", info.PVHits).
		Int("cache_size", info.CacheSize).
		Int("ties", len(best)).
		Str("best", result.Move.String()).
		Int("score", result.Score).
		Bool("completed", result.Completed).
		Dur("took", info.Time).
		Msg("depth finished")
	if s.OnInfo != nil {
		s.OnInfo(info)
	}

	return result
}

// leaf reports whether the node is evaluated statically.
func (s *Searcher) leaf(pos *board.Position, depth int) bool {
	return s.stopped() || depth == 0 || pos.IsTerminal()
}

// successors expands pos in search order: heuristic order first, then the
// cached best move from an earlier iteration, if still legal, moved to the front.
func (s *Searcher) successors(pos *board.Position) []child {
	children := expand(pos)
	orderBySuccessor(children)
	if entry, ok := s.bestMoves.Probe(pos.Hash()); ok && promote(children, entry.BestMove) {
		s.pvHits++
	}
	return children
}

// maxValue scores a node where the searching player is to move.
func (s *Searcher) maxValue(pos *board.Position, alpha, beta, depth int) int {
	if s.leaf(pos, depth) {
		s.leaves++
		return pos.Evaluate(s.searching)
	}

	if entry, ok := s.tt.Probe(pos.Hash()); ok {
		return entry.Score
	}

	score := -Infinity
	bestMove := board.NoMove

	for _, c := range s.successors(pos) {
		if s.stopped() {
			break
		}
		v := s.minValue(c.pos, alpha, beta, depth-1)
		if v > score {
			score = v
			bestMove = c.move
		}
		if score > beta {
			s.prunes++
			break
		}
		alpha = max(alpha, score)
	}

	s.bestMoves.Store(pos.Hash(), bestMove, score)
	s.tt.Store(pos.Hash(), bestMove, score)
	return score
}

// minValue scores a node where the opponent of the searching player is to move.
func (s *Searcher) minValue(pos *board.Position, alpha, beta, depth int) int {
	if s.leaf(pos, depth) {
		s.leaves++
		return pos.Evaluate(s.searching)
	}

	if entry, ok := s.tt.Probe(pos.Hash()); ok {
		return entry.Score
	}

	score := Infinity
	bestMove := board.NoMove

	for _, c := range s.successors(pos) {
		if s.stopped() {
			break
		}
		v := s.maxValue(c.pos, alpha, beta, depth-1)
		if v < score {
			score = v
			bestMove = c.move
		}
		if score < alpha {
			s.prunes++
			break
		}
		beta = min(beta, score)
	}

	s.bestMoves.Store(pos.Hash(), bestMove, score)
	s.tt.Store(pos.Hash(), bestMove, score)
	return score
}
