package command

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/invariant"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
)

// CreateLaw creates a new law in DRAFT status. Checkpoints, if empty,
// fall back to the policy's CheckpointDefaults for the given
// reversibility (spec §4.9).
type CreateLaw struct {
	CommandID     string
	ActorID       string
	LawID         string
	WorkspaceID   string
	Title         string
	Scope         map[string]string
	Reversibility string
	Checkpoints   []int
	Params        map[string]string
}

func (c CreateLaw) Handle(now time.Time, _ *Projections, safety policy.SafetyPolicy) ([]event.Event, error) {
	reversibility, ok := policy.ReversibilityFromString(c.Reversibility)
	if !ok {
		return nil, kernelerrors.CheckpointScheduleInvalid("unknown reversibility " + c.Reversibility)
	}

	checkpoints := c.Checkpoints
	if len(checkpoints) == 0 {
		checkpoints = safety.CheckpointDefaults[reversibility]
	}
	if err := invariant.CheckpointsMonotonic(checkpoints); err != nil {
		return nil, err
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeLawCreated, now, event.LawCreatedPayload{
		LawID:         c.LawID,
		WorkspaceID:   c.WorkspaceID,
		Title:         c.Title,
		Scope:         c.Scope,
		Reversibility: string(reversibility),
		Checkpoints:   checkpoints,
		Params:        c.Params,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// ActivateLaw moves a DRAFT law to ACTIVE, scheduling its first
// checkpoint.
type ActivateLaw struct {
	CommandID string
	ActorID   string
	LawID     string
}

func (c ActivateLaw) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	law, ok := p.Laws.Get(c.LawID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.LawID)
	}
	if err := invariant.LawStatusTransition(law.Status, policy.LawActive); err != nil {
		return nil, err
	}

	nextCheckpointAt := now.AddDate(0, 0, law.Checkpoints[0])
	if err := invariant.CheckpointScheduleTime(now, nextCheckpointAt); err != nil {
		return nil, err
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeLawActivated, now, event.LawActivatedPayload{
		LawID:            c.LawID,
		ActivatedAt:      now,
		NextCheckpointAt: nextCheckpointAt,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// ReviewOutcome is the set of outcomes CompleteReview accepts (spec §4.4).
type ReviewOutcome string

const (
	ReviewContinue ReviewOutcome = "continue"
	ReviewAdjust   ReviewOutcome = "adjust"
	ReviewSunset   ReviewOutcome = "sunset"
)

// CompleteReview resolves a law currently under REVIEW.
type CompleteReview struct {
	CommandID string
	ActorID   string
	LawID     string
	Outcome   ReviewOutcome
}

func (c CompleteReview) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	law, ok := p.Laws.Get(c.LawID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.LawID)
	}
	if law.Status != policy.LawReview {
		return nil, kernelerrors.IllegalStatusTransition("law", string(law.Status), "REVIEW")
	}

	var newStatus policy.LawStatus
	var nextCheckpointIndex int
	var nextCheckpointAt *time.Time

	switch c.Outcome {
	case ReviewContinue:
		newStatus = policy.LawActive
		nextCheckpointIndex = law.CheckpointIndex + 1
		if nextCheckpointIndex < len(law.Checkpoints) {
			t := now.AddDate(0, 0, law.Checkpoints[nextCheckpointIndex])
			nextCheckpointAt = &t
		}
	case ReviewAdjust:
		newStatus = policy.LawActive
		nextCheckpointIndex = 0
		t := now.AddDate(0, 0, law.Checkpoints[0])
		nextCheckpointAt = &t
	case ReviewSunset:
		newStatus = policy.LawSunset
	default:
		return nil, kernelerrors.CheckpointScheduleInvalid("unknown review outcome " + string(c.Outcome))
	}

	if err := invariant.LawStatusTransition(policy.LawReview, newStatus); err != nil {
		return nil, err
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeLawReviewCompleted, now, event.LawReviewCompletedPayload{
		LawID:            c.LawID,
		Outcome:          string(c.Outcome),
		NewStatus:        string(newStatus),
		CheckpointIndex:  nextCheckpointIndex,
		NextCheckpointAt: nextCheckpointAt,
		CompletedAt:      now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}
