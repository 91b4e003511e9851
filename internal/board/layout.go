package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Layout notation describes a position in one line:
//
//	<rows separated by '/'> <side to move> <plies left>
//
// Each row lists its cells as 'X', 'O' or '.', e.g. "..O/.../X.. x 4".

// ParseLayout parses a layout string and returns a Position.
// Marks are written through Place, so the result satisfies every Position invariant.
func ParseLayout(layout string) (*Position, error) {
	parts := strings.Fields(layout)
	if len(parts) != 3 {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid layout: need 3 fields, got %d", len(parts))
	}

	rowStrs := strings.Split(parts[0], "/")
	rows := len(rowStrs)
	cols := len(rowStrs[0])
	for i, rs := range rowStrs {
		if len(rs) != cols {
			return nil, errors.Wrapf(ErrInvalidArgument, "invalid layout: row %d has %d cells, want %d", i, len(rs), cols)
		}
	}

	side, err := ParseMark(parts[1])
	if err != nil {
		return nil, err
	}

	plies, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid plies left: %s", parts[2])
	}

	pos, err := NewPositionSize(rows, cols, side, plies)
	if err != nil {
		return nil, err
	}

	for r, rs := range rowStrs {
		for c := 0; c < cols; c++ {
			mark, ok := markFromSymbol(rs[c])
			if !ok {
				return nil, errors.Wrapf(ErrInvalidArgument, "invalid cell %q at (%d, %d)", rs[c], r, c)
			}
			if mark == Empty {
				continue
			}
			if err := pos.Place(r, c, mark); err != nil {
				return nil, err
			}
		}
	}

	return pos, nil
}

// Layout returns the layout string of the position.
func (p *Position) Layout() string {
	var sb strings.Builder

	for r := 0; r < p.rows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < p.cols; c++ {
			sb.WriteByte(p.cells[r][c].Symbol())
		}
	}

	sb.WriteByte(' ')
	if p.sideToMove == MarkX {
		sb.WriteByte('x')
	} else {
		sb.WriteByte('o')
	}
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.pliesLeft))

	return sb.String()
}

// NewStandardPosition creates the default 8x8 opening: X holds the 2x2 block
// in the bottom-left corner, O the 2x2 block in the top-right corner, and the
// game lasts the given number of rounds (two plies each).
func NewStandardPosition(rounds int, first Mark) (*Position, error) {
	if rounds <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "rounds must be positive, got %d", rounds)
	}

	pos, err := NewPosition(first, 2*rounds)
	if err != nil {
		return nil, err
	}

	r, c := DefaultRows, DefaultCols
	setup := []struct {
		row, col int
		mark     Mark
	}{
		{r - 2, 0, MarkX}, {r - 1, 0, MarkX}, {r - 2, 1, MarkX}, {r - 1, 1, MarkX},
		{0, c - 2, MarkO}, {0, c - 1, MarkO}, {1, c - 2, MarkO}, {1, c - 1, MarkO},
	}
	for _, s := range setup {
		if err := pos.Place(s.row, s.col, s.mark); err != nil {
			return nil, err
		}
	}

	return pos, nil
}
