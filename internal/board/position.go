// Package board implements the adjacency-capture board: marks, moves,
// Zobrist hashing and the Position state machine.
package board

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Position represents a complete game state.
//
// All mutation goes through Place and Apply. Scores, the empty-cell set and
// the Zobrist hash are maintained incrementally and always agree with the grid.
type Position struct {
	rows, cols int
	cells      [MaxRows][MaxCols]Mark
	empty      CellSet

	sideToMove Mark
	pliesLeft  int

	// score[MarkX] and score[MarkO] count the cells held by each player.
	score [markCount]int

	hash uint64
}

// NewPosition creates an empty default-size board.
func NewPosition(first Mark, pliesLeft int) (*Position, error) {
	return NewPositionSize(DefaultRows, DefaultCols, first, pliesLeft)
}

// NewPositionSize creates an empty rows x cols board with first to move.
func NewPositionSize(rows, cols int, first Mark, pliesLeft int) (*Position, error) {
	if !first.IsPlayer() {
		return nil, errors.Wrap(ErrInvalidArgument, "current player cannot be empty")
	}
	if pliesLeft <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "plies left must be positive, got %d", pliesLeft)
	}
	if rows < 1 || rows > MaxRows || cols < 1 || cols > MaxCols {
		return nil, errors.Wrapf(ErrInvalidArgument, "board size %dx%d out of range", rows, cols)
	}

	p := &Position{
		rows:       rows,
		cols:       cols,
		sideToMove: first,
		pliesLeft:  pliesLeft,
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p.empty.Add(NewMove(r, c))
		}
	}
	if first == MarkX {
		p.hash = zobristSideX
	}
	return p, nil
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Rows returns the number of rows.
func (p *Position) Rows() int { return p.rows }

// Cols returns the number of columns.
func (p *Position) Cols() int { return p.cols }

// SideToMove returns the player holding the turn.
func (p *Position) SideToMove() Mark { return p.sideToMove }

// PliesLeft returns the number of half-moves remaining.
func (p *Position) PliesLeft() int { return p.pliesLeft }

// Hash returns the Zobrist hash of the position.
func (p *Position) Hash() uint64 { return p.hash }

// Score returns the number of cells held by the given player.
func (p *Position) Score(m Mark) int {
	if !m.IsPlayer() {
		return 0
	}
	return p.score[m]
}

// ScoreX returns the number of cells held by X.
func (p *Position) ScoreX() int { return p.score[MarkX] }

// ScoreO returns the number of cells held by O.
func (p *Position) ScoreO() int { return p.score[MarkO] }

// Evaluate returns the score differential from the given player's point of view.
func (p *Position) Evaluate(perspective Mark) int {
	return p.Score(perspective) - p.Score(perspective.Other())
}

// At returns the mark at the given cell.
func (p *Position) At(row, col int) Mark {
	return p.cells[row][col]
}

// InBounds reports whether (row, col) is on the board.
func (p *Position) InBounds(row, col int) bool {
	return row >= 0 && row < p.rows && col >= 0 && col < p.cols
}

// EmptyCells returns the legal moves in ascending cell order.
func (p *Position) EmptyCells() []Move {
	return p.empty.Moves()
}

// EmptyCount returns the number of empty cells.
func (p *Position) EmptyCount() int {
	return p.empty.Len()
}

// IsLegal reports whether m targets an empty cell on this board.
func (p *Position) IsLegal(m Move) bool {
	return m != NoMove && p.empty.Has(m)
}

// IsTerminal returns true when no plies remain or the board is full.
func (p *Position) IsTerminal() bool {
	return p.pliesLeft == 0 || p.empty.IsEmpty()
}

// Place writes mark on an empty cell. It is the only primitive that puts a
// mark on an empty cell; the capture path in Apply reuses setMark.
func (p *Position) Place(row, col int, mark Mark) error {
	if !mark.IsPlayer() {
		return errors.Wrap(ErrInvalidArgument, "mark is empty")
	}
	if !p.InBounds(row, col) {
		return errors.Wrapf(ErrInvalidArgument, "cell (%d, %d) is off the board", row, col)
	}
	if p.cells[row][col] != Empty {
		return errors.Wrapf(ErrInvalidState, "target cell (%d, %d) is not empty", row, col)
	}
	p.setMark(row, col, mark)
	return nil
}

// Apply plays m for the side to move: places its mark, converts every
// occupied orthogonal neighbour, passes the turn and consumes one ply.
func (p *Position) Apply(m Move) error {
	if p.pliesLeft == 0 {
		return errors.Wrap(ErrInvalidState, "no plies left")
	}
	row, col := m.Row(), m.Col()
	mark := p.sideToMove

	if err := p.Place(row, col, mark); err != nil {
		return err
	}

	if row > 0 && p.cells[row-1][col] != Empty {
		p.setMark(row-1, col, mark)
	}
	if col > 0 && p.cells[row][col-1] != Empty {
		p.setMark(row, col-1, mark)
	}
	if row < p.rows-1 && p.cells[row+1][col] != Empty {
		p.setMark(row+1, col, mark)
	}
	if col < p.cols-1 && p.cells[row][col+1] != Empty {
		p.setMark(row, col+1, mark)
	}

	p.switchTurn()
	p.pliesLeft--
	return nil
}

// Child returns a copy of the position with m applied.
func (p *Position) Child(m Move) (*Position, error) {
	next := p.Copy()
	if err := next.Apply(m); err != nil {
		return nil, err
	}
	return next, nil
}

// setMark overwrites one cell, keeping scores, the empty set and the hash in sync.
func (p *Position) setMark(row, col int, mark Mark) {
	cell := NewMove(row, col)
	old := p.cells[row][col]

	p.cells[row][col] = mark
	p.empty.Remove(cell)

	if old.IsPlayer() {
		p.score[old]--
	}
	p.score[mark]++

	p.hash ^= zobristMark[old][cell]
	p.hash ^= zobristMark[mark][cell]
}

func (p *Position) switchTurn() {
	p.sideToMove = p.sideToMove.Other()
	p.hash ^= zobristSideX
}

// Heuristic estimates how good m is for the side to move. It is used for
// move ordering only and never as a leaf evaluation.
func (p *Position) Heuristic(m Move) int {
	row, col := m.Row(), m.Col()

	count := p.heuristicPart(row, col)
	if row > 0 {
		count += p.heuristicPart(row-1, col)
	}
	if col > 0 {
		count += p.heuristicPart(row, col-1)
	}
	if row < p.rows-1 {
		count += p.heuristicPart(row+1, col)
	}
	if col < p.cols-1 {
		count += p.heuristicPart(row, col+1)
	}
	return count
}

// heuristicPart scores one cell: +1 per orthogonal opponent mark, -1 per
// diagonal own mark with an empty cell between it and (row, col).
func (p *Position) heuristicPart(row, col int) int {
	us := p.sideToMove
	them := us.Other()
	count := 0

	if row > 0 && p.cells[row-1][col] == them {
		count++
	}
	if col > 0 && p.cells[row][col-1] == them {
		count++
	}
	if row < p.rows-1 && p.cells[row+1][col] == them {
		count++
	}
	if col < p.cols-1 && p.cells[row][col+1] == them {
		count++
	}

	up, down := row > 0, row < p.rows-1
	left, right := col > 0, col < p.cols-1

	if up && left && p.cells[row-1][col-1] == us &&
		(p.cells[row-1][col] == Empty || p.cells[row][col-1] == Empty) {
		count--
	}
	if up && right && p.cells[row-1][col+1] == us &&
		(p.cells[row-1][col] == Empty || p.cells[row][col+1] == Empty) {
		count--
	}
	if down && left && p.cells[row+1][col-1] == us &&
		(p.cells[row+1][col] == Empty || p.cells[row][col-1] == Empty) {
		count--
	}
	if down && right && p.cells[row+1][col+1] == us &&
		(p.cells[row+1][col] == Empty || p.cells[row][col+1] == Empty) {
		count--
	}

	return count
}

// ComputeHash recomputes the Zobrist hash from scratch.
// Used for debugging and to verify the incremental hash.
func (p *Position) ComputeHash() uint64 {
	var hash uint64
	for r := 0; r < p.rows; r++ {
		for c := 0; c < p.cols; c++ {
			hash ^= zobristMark[p.cells[r][c]][NewMove(r, c)]
		}
	}
	if p.sideToMove == MarkX {
		hash ^= zobristSideX
	}
	return hash
}

// String returns a human-readable board with coordinates and scores.
func (p *Position) String() string {
	var sb strings.Builder

	sb.WriteString("   ")
	for c := 0; c < p.cols; c++ {
		sb.WriteByte(' ')
		sb.WriteString(itoa2(c))
	}
	sb.WriteByte('\n')

	for r := 0; r < p.rows; r++ {
		sb.WriteString(itoa2(r))
		sb.WriteByte(' ')
		for c := 0; c < p.cols; c++ {
			sb.WriteString("  ")
			sb.WriteByte(p.cells[r][c].Symbol())
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("\nTurn: ")
	sb.WriteString(p.sideToMove.String())
	sb.WriteString("  X: ")
	sb.WriteString(itoa2(p.score[MarkX]))
	sb.WriteString("  O: ")
	sb.WriteString(itoa2(p.score[MarkO]))
	sb.WriteString("  Plies left: ")
	sb.WriteString(itoa2(p.pliesLeft))
	sb.WriteByte('\n')

	return sb.String()
}

// itoa2 formats small non-negative integers right-aligned in two columns.
func itoa2(n int) string {
	return fmt.Sprintf("%2d", n)
}
