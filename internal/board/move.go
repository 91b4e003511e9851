package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Board size limits. Both coordinates of a valid cell stay below 15 so that
// every encoded move differs from NoMove.
const (
	MaxRows = 15
	MaxCols = 15

	DefaultRows = 8
	DefaultCols = 8
)

// Move encodes a cell in 8 bits:
// bits 4-7: row (0-14)
// bits 0-3: column (0-14)
type Move uint8

// NoMove represents an invalid or null move.
const NoMove Move = 0xFF

// NewMove creates a move for the given cell.
func NewMove(row, col int) Move {
	return Move((row&0xF)<<4 | col&0xF)
}

// Row returns the row of the target cell.
func (m Move) Row() int {
	return int(m >> 4)
}

// Col returns the column of the target cell.
func (m Move) Col() int {
	return int(m & 0xF)
}

// String returns the move as "(row, col)".
func (m Move) String() string {
	if m == NoMove {
		return "(-)"
	}
	return fmt.Sprintf("(%d, %d)", m.Row(), m.Col())
}

// ParseMove parses a move written as "row,col" or "row col".
func ParseMove(s string) (Move, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '(' || r == ')'
	})
	if len(fields) != 2 {
		return NoMove, errors.Wrapf(ErrInvalidArgument, "invalid move string: %q", s)
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return NoMove, errors.Wrapf(ErrInvalidArgument, "invalid row in %q", s)
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return NoMove, errors.Wrapf(ErrInvalidArgument, "invalid column in %q", s)
	}
	if row < 0 || row >= MaxRows || col < 0 || col >= MaxCols {
		return NoMove, errors.Wrapf(ErrInvalidArgument, "move %q out of range", s)
	}
	return NewMove(row, col), nil
}
