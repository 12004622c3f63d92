// Package memstore is an in-memory eventlog.Log, grounded on the
// mutex-guarded map store pattern used for tests and local development.
// It never persists; it exists for unit tests, the tick-engine's
// virtual-clock scenarios, and command-handler tests that need a real
// Log without a database.
package memstore

import (
	"context"
	"sort"
	"sync"

	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
)

type stream struct {
	streamType event.StreamType
	version    int64
	events     []event.Event
	commandIDs map[string]bool
}

// Store is a concurrency-safe, in-memory implementation of eventlog.Log.
type Store struct {
	mu      sync.RWMutex
	streams map[string]*stream
}

// New creates an empty store.
func New() *Store {
	return &Store{streams: make(map[string]*stream)}
}

func (s *Store) Append(_ context.Context, streamID string, streamType event.StreamType, expectedVersion int64, commandID string, newEvents []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[streamID]
	if !ok {
		st = &stream{streamType: streamType, commandIDs: make(map[string]bool)}
		s.streams[streamID] = st
	}

	if commandID != "" && st.commandIDs[commandID] {
		return nil
	}

	if st.version != expectedVersion {
		return kernelerrors.VersionConflict(streamID, expectedVersion, st.version)
	}

	for i := range newEvents {
		st.version++
		newEvents[i].StreamID = streamID
		newEvents[i].StreamType = streamType
		newEvents[i].Version = st.version
		st.events = append(st.events, newEvents[i])
	}

	if commandID != "" {
		st.commandIDs[commandID] = true
	}
	return nil
}

func (s *Store) LoadStream(_ context.Context, streamID string) ([]event.Event, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.streams[streamID]
	if !ok {
		return nil, 0, nil
	}

	out := make([]event.Event, len(st.events))
	copy(out, st.events)
	return out, st.version, nil
}

func (s *Store) LoadAll(_ context.Context) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []event.Event
	for _, st := range s.streams {
		all = append(all, st.events...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].EventID.Compare(all[j].EventID) < 0
	})
	return all, nil
}

func (s *Store) HasCommand(_ context.Context, streamID, commandID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.streams[streamID]
	if !ok {
		return false, nil
	}
	return st.commandIDs[commandID], nil
}
