package board

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument reports illegal construction or placement parameters.
	ErrInvalidArgument = errors.New("board: invalid argument")
	// ErrInvalidState reports a mutation that the current position does not allow,
	// such as placing on an occupied cell.
	ErrInvalidState = errors.New("board: invalid state")
)
