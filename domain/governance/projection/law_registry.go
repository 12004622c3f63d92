package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
)

// Law is a projected view of a law aggregate.
type Law struct {
	LawID            string
	WorkspaceID      string
	Title            string
	Scope            map[string]string
	Reversibility    policy.Reversibility
	Checkpoints      []int
	Params           map[string]string
	Status           policy.LawStatus
	CreatedAt        time.Time
	ActivatedAt      time.Time
	NextCheckpointAt time.Time
	CheckpointIndex  int
}

// LawRegistry indexes laws by id.
type LawRegistry struct {
	mu   sync.RWMutex
	laws map[string]*Law
}

// NewLawRegistry creates an empty registry.
func NewLawRegistry() *LawRegistry {
	return &LawRegistry{laws: make(map[string]*Law)}
}

// Apply folds a single event into the registry.
func (r *LawRegistry) Apply(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case event.TypeLawCreated:
		p := ev.Payload.(event.LawCreatedPayload)
		reversibility, _ := policy.ReversibilityFromString(p.Reversibility)
		r.laws[p.LawID] = &Law{
			LawID:         p.LawID,
			WorkspaceID:   p.WorkspaceID,
			Title:         p.Title,
			Scope:         p.Scope,
			Reversibility: reversibility,
			Checkpoints:   p.Checkpoints,
			Params:        p.Params,
			Status:        policy.LawDraft,
			CreatedAt:     p.CreatedAt,
		}
	case event.TypeLawActivated:
		p := ev.Payload.(event.LawActivatedPayload)
		if l, ok := r.laws[p.LawID]; ok {
			l.Status = policy.LawActive
			l.ActivatedAt = p.ActivatedAt
			l.NextCheckpointAt = p.NextCheckpointAt
			l.CheckpointIndex = 0
		}
	case event.TypeLawReviewTriggered:
		p := ev.Payload.(event.LawReviewTriggeredPayload)
		if l, ok := r.laws[p.LawID]; ok {
			l.Status = policy.LawReview
			l.CheckpointIndex = p.CheckpointIndex
		}
	case event.TypeLawReviewCompleted:
		p := ev.Payload.(event.LawReviewCompletedPayload)
		if l, ok := r.laws[p.LawID]; ok {
			l.Status = policy.LawStatus(p.NewStatus)
			l.CheckpointIndex = p.CheckpointIndex
			if p.NextCheckpointAt != nil {
				l.NextCheckpointAt = *p.NextCheckpointAt
			}
		}
	}
}

// Get returns a copy of a law by id.
func (r *LawRegistry) Get(lawID string) (Law, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.laws[lawID]
	if !ok {
		return Law{}, false
	}
	return *l, true
}

// OverdueCheckpoints returns the ids of laws currently in ACTIVE status whose
// next_checkpoint_at has already passed as of now: the tick engine's
// checkpoint-overrun candidate set (spec §4.6 rule 2).
func (r *LawRegistry) OverdueCheckpoints(now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, l := range r.laws {
		if l.Status == policy.LawActive && now.After(l.NextCheckpointAt) {
			ids = append(ids, id)
		}
	}
	return ids
}
