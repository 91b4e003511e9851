package board

import "math/bits"

// CellSet is a 256-bit set of cells, one bit per encoded Move.
// Bit i corresponds to Move(i), so iteration yields moves in row-major order.
type CellSet [4]uint64

// Add inserts a cell into the set.
func (s *CellSet) Add(m Move) {
	s[m>>6] |= 1 << (m & 63)
}

// Remove deletes a cell from the set.
func (s *CellSet) Remove(m Move) {
	s[m>>6] &^= 1 << (m & 63)
}

// Has reports whether the cell is in the set.
func (s *CellSet) Has(m Move) bool {
	return s[m>>6]&(1<<(m&63)) != 0
}

// Len returns the number of cells in the set.
func (s *CellSet) Len() int {
	return bits.OnesCount64(s[0]) + bits.OnesCount64(s[1]) +
		bits.OnesCount64(s[2]) + bits.OnesCount64(s[3])
}

// IsEmpty reports whether the set has no cells.
func (s *CellSet) IsEmpty() bool {
	return s[0]|s[1]|s[2]|s[3] == 0
}

// Moves returns the cells in ascending order.
func (s *CellSet) Moves() []Move {
	moves := make([]Move, 0, s.Len())
	for w, word := range s {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			moves = append(moves, Move(w<<6|b))
			word &= word - 1
		}
	}
	return moves
}
