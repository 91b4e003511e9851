package engine

import (
	"github.com/hailam/adjacency/internal/board"
)

// TTEntry is a cached search result for one position.
type TTEntry struct {
	BestMove board.Move // Best move found at this node
	Score    int        // Score from the searching player's point of view
}

// TranspositionTable maps Zobrist hashes to search results.
//
// The searcher keeps two of them: the transposition table proper, cleared at
// the start of every fixed-depth iteration, and the best-move cache, which
// survives across iterations of one search and only feeds move ordering.
// Neither is shared between searches, so no locking is needed.
type TranspositionTable struct {
	entries map[uint64]TTEntry

	// Statistics
	hits   uint64
	probes uint64
}

// NewTranspositionTable creates an empty table sized for roughly sizeHint entries.
func NewTranspositionTable(sizeHint int) *TranspositionTable {
	return &TranspositionTable{
		entries: make(map[uint64]TTEntry, sizeHint),
	}
}

// Probe looks up a position in the table.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++
	entry, ok := tt.entries[hash]
	if ok {
		tt.hits++
	}
	return entry, ok
}

// Store saves a result, replacing any previous entry for the position.
func (tt *TranspositionTable) Store(hash uint64, bestMove board.Move, score int) {
	tt.entries[hash] = TTEntry{BestMove: bestMove, Score: score}
}

// Clear empties the table and resets its statistics.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.hits = 0
	tt.probes = 0
}

// Len returns the number of stored positions.
func (tt *TranspositionTable) Len() int {
	return len(tt.entries)
}

// Hits returns the number of successful probes since the last Clear.
func (tt *TranspositionTable) Hits() uint64 {
	return tt.hits
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}
