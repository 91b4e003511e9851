package board

import "github.com/pkg/errors"

// Mark is the content of a single cell, and doubles as the player identity.
type Mark uint8

const (
	Empty Mark = iota
	MarkX
	MarkO
)

// markCount is the number of distinct marks, used to size per-mark tables.
const markCount = 3

// Other returns the opposing player. Empty has no opponent and maps to itself.
func (m Mark) Other() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return Empty
	}
}

// IsPlayer reports whether m is one of the two player marks.
func (m Mark) IsPlayer() bool {
	return m == MarkX || m == MarkO
}

// String returns the player name.
func (m Mark) String() string {
	switch m {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return "Empty"
	}
}

// Symbol returns the single-character representation used in layouts.
func (m Mark) Symbol() byte {
	switch m {
	case MarkX:
		return 'X'
	case MarkO:
		return 'O'
	default:
		return '.'
	}
}

// ParseMark parses a player name ("x", "X", "o", "O").
func ParseMark(s string) (Mark, error) {
	switch s {
	case "x", "X":
		return MarkX, nil
	case "o", "O":
		return MarkO, nil
	}
	return Empty, errors.Wrapf(ErrInvalidArgument, "unknown player %q", s)
}

func markFromSymbol(c byte) (Mark, bool) {
	switch c {
	case 'X', 'x':
		return MarkX, true
	case 'O', 'o':
		return MarkO, true
	case '.':
		return Empty, true
	}
	return Empty, false
}
