package engine

import (
	"context"
	"encoding/binary"
	"sync/atomic"

	"github.com/pkg/errors"
	"lukechampine.com/frand"

	"github.com/hailam/adjacency/internal/board"
)

var (
	// ErrNoLegalMove is returned when asked to move in a terminal position.
	ErrNoLegalMove = errors.New("engine: no legal move in position")
	// ErrUnknownStrategy is returned by NewStrategy for an unregistered name.
	ErrUnknownStrategy = errors.New("engine: unknown strategy")
)

// Strategy chooses a move for the side to move.
//
// ProposeMove never mutates pos. It returns early, with the best move found so
// far, once ctx is done or Stop has been called.
type Strategy interface {
	Name() string
	ProposeMove(ctx context.Context, pos *board.Position) (board.Move, error)
	Stop()
	IsStopped() bool
}

// Base carries the cooperative stop flag shared by every strategy.
// Stop may be called from any goroutine; the flag is reset at the start
// of each ProposeMove call.
type Base struct {
	stopFlag atomic.Bool
}

// Stop signals the current search to stop.
func (b *Base) Stop() {
	b.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (b *Base) IsStopped() bool {
	return b.stopFlag.Load()
}

// begin prepares a ProposeMove call: it rejects terminal positions, resets
// the stop flag and ties it to ctx, and returns a private copy of pos.
// The returned release function detaches the flag from ctx.
func (b *Base) begin(ctx context.Context, pos *board.Position) (*board.Position, func(), error) {
	if pos.IsTerminal() {
		return nil, nil, errors.Wrapf(ErrNoLegalMove, "terminal position %s", pos.Layout())
	}

	b.stopFlag.Store(false)
	if ctx.Err() != nil {
		b.Stop()
	}
	unregister := context.AfterFunc(ctx, b.Stop)

	return pos.Copy(), func() { unregister() }, nil
}

// NewRand returns a random source for tie-breaks and genetic operators.
// A zero seed draws from system entropy; any other seed gives a
// reproducible stream.
func NewRand(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return frand.NewCustom(key[:], 1024, 12)
}
