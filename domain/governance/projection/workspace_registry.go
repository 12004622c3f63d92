package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
)

// Workspace is a projected workspace aggregate view.
type Workspace struct {
	WorkspaceID       string
	Name              string
	ParentWorkspaceID string
	Scope             map[string]string
	CreatedAt         time.Time
	ArchivedAt        *time.Time
}

// Archived reports whether the workspace has been archived.
func (w Workspace) Archived() bool {
	return w.ArchivedAt != nil
}

// WorkspaceRegistry indexes workspaces by id.
type WorkspaceRegistry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewWorkspaceRegistry creates an empty registry.
func NewWorkspaceRegistry() *WorkspaceRegistry {
	return &WorkspaceRegistry{workspaces: make(map[string]*Workspace)}
}

// Apply folds a single event into the registry.
func (r *WorkspaceRegistry) Apply(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case event.TypeWorkspaceCreated:
		p := ev.Payload.(event.WorkspaceCreatedPayload)
		r.workspaces[p.WorkspaceID] = &Workspace{
			WorkspaceID:       p.WorkspaceID,
			Name:              p.Name,
			ParentWorkspaceID: p.ParentWorkspaceID,
			Scope:             p.Scope,
			CreatedAt:         p.CreatedAt,
		}
	case event.TypeWorkspaceArchived:
		p := ev.Payload.(event.WorkspaceArchivedPayload)
		if w, ok := r.workspaces[p.WorkspaceID]; ok {
			archivedAt := p.ArchivedAt
			w.ArchivedAt = &archivedAt
		}
	}
}

// Get returns a copy of a workspace by id.
func (r *WorkspaceRegistry) Get(workspaceID string) (Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workspaces[workspaceID]
	if !ok {
		return Workspace{}, false
	}
	return *w, true
}

// Exists reports whether a workspace id is known, regardless of
// archived status.
func (r *WorkspaceRegistry) Exists(workspaceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.workspaces[workspaceID]
	return ok
}
