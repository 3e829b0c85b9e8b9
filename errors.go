package substate

import (
	"errors"

	"github.com/orneryd/substate/stream"
)

// Deserialization errors (§7 bucket 2). These are returned from the various
// Read routines; the first one encountered short-circuits the rest of the
// read and discards any partial result. ErrTruncatedStream is the stream
// package's ErrTruncated, so a read that runs out of data matches it.
var (
	ErrTruncatedStream = stream.ErrTruncated
	ErrUnknownTypeID   = errors.New("substate: unknown type id")
	ErrUnresolvedRef   = errors.New("substate: unresolved node reference")
	ErrInvalidTag      = errors.New("substate: invalid tag value")
)

// Engine soft failures (§7 bucket 3) have no error values: an empty commit,
// an undo with nothing to undo and a redo with nothing to redo are silent
// no-ops, and the Model methods that meet them return normally.
