// Package pgstore is the PostgreSQL implementation of eventlog.Log,
// grounded on the store's raw database/sql plus lib/pq JSON-column
// pattern. Stream versions are tracked in their own table so an
// optimistic-lock check reads one row with SELECT ... FOR UPDATE and
// compares it to the expected version before inserting.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/ids"
)

// Store is a *sql.DB-backed eventlog.Log.
type Store struct {
	db *sql.DB
}

// New wraps an open *sql.DB. Callers are expected to have called
// EnsureSchema once at process startup.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, streamID string, streamType event.StreamType, expectedVersion int64, commandID string, newEvents []event.Event) error {
	if len(newEvents) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kernelerrors.LogUnavailable(err)
	}
	defer tx.Rollback()

	if commandID != "" {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM governance_events WHERE stream_id = $1 AND command_id = $2)`,
			streamID, commandID,
		).Scan(&exists)
		if err != nil {
			return kernelerrors.LogUnavailable(err)
		}
		if exists {
			return nil
		}
	}

	var currentVersion int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM governance_stream_versions WHERE stream_id = $1 FOR UPDATE`,
		streamID,
	).Scan(&currentVersion)
	switch {
	case err == sql.ErrNoRows:
		currentVersion = 0
	case err != nil:
		return kernelerrors.LogUnavailable(err)
	}

	if currentVersion != expectedVersion {
		return kernelerrors.VersionConflict(streamID, expectedVersion, currentVersion)
	}

	nextVersion := currentVersion
	for i := range newEvents {
		nextVersion++
		ev := newEvents[i]
		ev.StreamID = streamID
		ev.StreamType = streamType
		ev.Version = nextVersion

		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("pgstore: marshal payload for %s: %w", ev.Type, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO governance_events (
				stream_id, stream_type, version, event_id, command_id,
				type, occurred_at, actor_id, payload
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			streamID, string(streamType), ev.Version, ev.EventID.String(), commandID,
			string(ev.Type), ev.OccurredAt, ev.ActorID, payload,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return kernelerrors.CorruptStream(streamID, err)
			}
			return kernelerrors.LogUnavailable(err)
		}
		newEvents[i] = ev
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO governance_stream_versions (stream_id, stream_type, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (stream_id) DO UPDATE SET version = EXCLUDED.version
	`, streamID, string(streamType), nextVersion)
	if err != nil {
		return kernelerrors.LogUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return kernelerrors.LogUnavailable(err)
	}
	return nil
}

func (s *Store) LoadStream(ctx context.Context, streamID string) ([]event.Event, int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, stream_type, version, event_id, type, occurred_at, actor_id, payload
		FROM governance_events
		WHERE stream_id = $1
		ORDER BY version ASC
	`, streamID)
	if err != nil {
		return nil, 0, kernelerrors.LogUnavailable(err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}

	var version int64
	err = s.db.QueryRowContext(ctx,
		`SELECT version FROM governance_stream_versions WHERE stream_id = $1`, streamID,
	).Scan(&version)
	if err == sql.ErrNoRows {
		return events, 0, nil
	}
	if err != nil {
		return nil, 0, kernelerrors.LogUnavailable(err)
	}
	return events, version, nil
}

func (s *Store) LoadAll(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, stream_type, version, event_id, type, occurred_at, actor_id, payload
		FROM governance_events
		ORDER BY event_id ASC
	`)
	if err != nil {
		return nil, kernelerrors.LogUnavailable(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) HasCommand(ctx context.Context, streamID, commandID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM governance_events WHERE stream_id = $1 AND command_id = $2)`,
		streamID, commandID,
	).Scan(&exists)
	if err != nil {
		return false, kernelerrors.LogUnavailable(err)
	}
	return exists, nil
}

func scanEvents(rows *sql.Rows) ([]event.Event, error) {
	var out []event.Event
	for rows.Next() {
		var (
			streamID, streamType, eventIDHex, typ, actorID string
			version                                        int64
			occurredAt                                      time.Time
			payload                                         []byte
		)
		if err := rows.Scan(&streamID, &streamType, &version, &eventIDHex, &typ, &occurredAt, &actorID, &payload); err != nil {
			return nil, kernelerrors.LogUnavailable(err)
		}

		eventID, err := ids.ParseEventID(eventIDHex)
		if err != nil {
			return nil, kernelerrors.CorruptStream(streamID, err)
		}

		evType := event.Type(typ)
		target := event.NewPayload(evType)
		if target == nil {
			return nil, kernelerrors.CorruptStream(streamID, fmt.Errorf("pgstore: unrecognized event type %q", typ))
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, target); err != nil {
				return nil, kernelerrors.CorruptStream(streamID, fmt.Errorf("pgstore: unmarshal payload for %s: %w", typ, err))
			}
		}

		out = append(out, event.Event{
			EventID:    eventID,
			StreamID:   streamID,
			StreamType: event.StreamType(streamType),
			Version:    version,
			Type:       evType,
			OccurredAt: occurredAt,
			ActorID:    actorID,
			Payload:    derefPayload(target),
		})
	}
	return out, rows.Err()
}

// derefPayload unwraps the pointer event.NewPayload hands back so
// Event.Payload matches what command handlers produced before append.
func derefPayload(target any) any {
	switch v := target.(type) {
	case *event.WorkspaceCreatedPayload:
		return *v
	case *event.WorkspaceArchivedPayload:
		return *v
	case *event.DecisionRightDelegatedPayload:
		return *v
	case *event.DelegationRevokedPayload:
		return *v
	case *event.DelegationExpiredPayload:
		return *v
	case *event.LawCreatedPayload:
		return *v
	case *event.LawActivatedPayload:
		return *v
	case *event.LawReviewTriggeredPayload:
		return *v
	case *event.LawReviewCompletedPayload:
		return *v
	case *event.BudgetCreatedPayload:
		return *v
	case *event.BudgetActivatedPayload:
		return *v
	case *event.AllocationAdjustedPayload:
		return *v
	case *event.ExpenditureApprovedPayload:
		return *v
	case *event.ExpenditureRejectedPayload:
		return *v
	case *event.BudgetClosedPayload:
		return *v
	case *event.TenderCreatedPayload:
		return *v
	case *event.TenderOpenedPayload:
		return *v
	case *event.SupplierRegisteredPayload:
		return *v
	case *event.TenderAwardedPayload:
		return *v
	case *event.TenderClosedPayload:
		return *v
	case *event.DelegationConcentrationWarningPayload:
		return *v
	case *event.DelegationConcentrationHaltPayload:
		return *v
	case *event.TransparencyEscalatedPayload:
		return *v
	case *event.BudgetBalanceViolationDetectedPayload:
		return *v
	case *event.BudgetOverspendDetectedPayload:
		return *v
	case *event.SupplierConcentrationWarningPayload:
		return *v
	case *event.SupplierConcentrationHaltPayload:
		return *v
	default:
		return target
	}
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
