// Package eventlog defines the append-only event log contract the
// governance kernel is built on (spec §3, §6). Every aggregate's
// history lives in exactly one stream; appends are optimistic-locked
// on the stream's current version and commands are deduplicated by
// command_id within a stream.
package eventlog

import (
	"context"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
)

// Log is the append-only event store every command handler and
// projection rebuild goes through. Implementations must guarantee:
//   - Append is atomic: either every event in a batch is persisted at
//     sequential versions starting at expectedVersion+1, or none are.
//   - a command_id already recorded for the stream makes Append a
//     no-op that returns the command's original result, not an error.
//   - LoadStream and LoadAll return events ordered by Version.
type Log interface {
	// Append writes newEvents to streamID, failing with a
	// *errors.KernelError (CONC_VERSION_CONFLICT) if the stream's
	// current version does not equal expectedVersion. commandID is
	// used for idempotency: a repeat Append with the same commandID
	// returns nil without writing again once it has already
	// succeeded once for that stream.
	Append(ctx context.Context, streamID string, streamType event.StreamType, expectedVersion int64, commandID string, newEvents []event.Event) error

	// LoadStream returns every event recorded for streamID, in
	// version order, along with the stream's current version (0 if
	// the stream does not exist).
	LoadStream(ctx context.Context, streamID string) ([]event.Event, int64, error)

	// LoadAll returns every event across every stream in global
	// append order, for projection rebuilds at startup.
	LoadAll(ctx context.Context) ([]event.Event, error)

	// HasCommand reports whether commandID has already been recorded
	// for streamID, without loading the full stream.
	HasCommand(ctx context.Context, streamID, commandID string) (bool, error)
}
