package tierarena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Contract violations. Every one of them is fatal: the allocator panics with
// a *FatalError wrapping the matching sentinel and never returns a sentinel
// "out of memory" value to its caller.
var (
	// ErrNilAllocator indicates an operation on a nil *Allocator.
	ErrNilAllocator = errors.New("tierarena: nil allocator")

	// ErrDestroyed indicates use of an allocator after Destroy.
	ErrDestroyed = errors.New("tierarena: use after Destroy")

	// ErrZeroSize indicates an allocation request of zero (or negative) bytes.
	ErrZeroSize = errors.New("tierarena: zero-size allocation")

	// ErrTooLarge indicates a request above the large tier's ceiling.
	ErrTooLarge = errors.New("tierarena: allocation exceeds largest tier")

	// ErrSystemAlloc indicates the operating system refused a chunk.
	ErrSystemAlloc = errors.New("tierarena: system allocation failed")

	// ErrCorruptHeader indicates a block header with the wrong magic tag.
	ErrCorruptHeader = errors.New("tierarena: corrupt block header")

	// ErrUnknownPointer indicates a pointer not owned by any live block.
	ErrUnknownPointer = errors.New("tierarena: pointer not owned by allocator")

	// ErrDoubleFree indicates release of a block that is not in use.
	ErrDoubleFree = errors.New("tierarena: block is not in use")
)

// FatalError is the panic value for contract violations.
//
// The original sentinel can be matched with errors.Is after recovering.
type FatalError struct {
	Op     string
	Detail string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Detail)
}

func (e *FatalError) Unwrap() error { return e.Err }

// fatal logs the violation and panics. It never returns.
func fatal(logger *slog.Logger, op string, err error, format string, args ...any) {
	fe := &FatalError{Op: op, Err: err}
	if format != "" {
		fe.Detail = fmt.Sprintf(format, args...)
	}
	if logger != nil {
		logger.LogAttrs(context.Background(), slog.LevelError, "fatal contract violation",
			slog.String("op", op),
			slog.String("error", fe.Error()),
		)
	}
	panic(fe)
}
