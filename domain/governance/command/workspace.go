package command

import (
	"strings"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
)

// CreateWorkspace creates a new workspace under an optional parent.
type CreateWorkspace struct {
	CommandID         string
	ActorID           string
	WorkspaceID       string
	Name              string
	ParentWorkspaceID string
	Scope             map[string]string
}

// Handle validates the workspace name is non-empty (spec §4.4) and
// emits WorkspaceCreated.
func (c CreateWorkspace) Handle(now time.Time, _ *Projections) ([]event.Event, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, kernelerrors.CheckpointScheduleInvalid("workspace name must be non-empty")
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeWorkspaceCreated, now, event.WorkspaceCreatedPayload{
		WorkspaceID:       c.WorkspaceID,
		Name:              c.Name,
		ParentWorkspaceID: c.ParentWorkspaceID,
		Scope:             c.Scope,
		CreatedAt:         now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// ArchiveWorkspace archives a workspace that is not already archived.
type ArchiveWorkspace struct {
	CommandID   string
	ActorID     string
	WorkspaceID string
}

func (c ArchiveWorkspace) Handle(now time.Time, p *Projections) ([]event.Event, error) {
	ws, ok := p.Workspaces.Get(c.WorkspaceID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.WorkspaceID)
	}
	if ws.Archived() {
		return nil, kernelerrors.IllegalStatusTransition("workspace", "ARCHIVED", "ARCHIVED")
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeWorkspaceArchived, now, event.WorkspaceArchivedPayload{
		WorkspaceID: c.WorkspaceID,
		ArchivedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}
