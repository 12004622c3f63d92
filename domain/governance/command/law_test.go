package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
)

func TestCreateLaw_FallsBackToPolicyCheckpoints(t *testing.T) {
	now := time.Now().UTC()
	cmd := CreateLaw{CommandID: "c1", LawID: "law-1", Title: "Procurement Policy", Reversibility: "REVERSIBLE"}

	events, err := cmd.Handle(now, newTestProjections(), policy.Default())
	require.NoError(t, err)
	payload := events[0].Payload.(event.LawCreatedPayload)
	assert.Equal(t, []int{30, 90, 180, 365}, payload.Checkpoints)
}

func TestCreateLaw_RejectsNonMonotonicCheckpoints(t *testing.T) {
	now := time.Now().UTC()
	cmd := CreateLaw{CommandID: "c1", LawID: "law-1", Reversibility: "REVERSIBLE", Checkpoints: []int{90, 30}}
	_, err := cmd.Handle(now, newTestProjections(), policy.Default())
	require.Error(t, err)
}

func TestCreateLaw_RejectsUnknownReversibility(t *testing.T) {
	now := time.Now().UTC()
	cmd := CreateLaw{CommandID: "c1", LawID: "law-1", Reversibility: "MAYBE"}
	_, err := cmd.Handle(now, newTestProjections(), policy.Default())
	require.Error(t, err)
}

func applyLawCreatedAndActivated(p *Projections, now time.Time, checkpoints []int) {
	p.Laws.Apply(event.Event{Type: event.TypeLawCreated, Payload: event.LawCreatedPayload{LawID: "law-1", Checkpoints: checkpoints, CreatedAt: now}})
	p.Laws.Apply(event.Event{Type: event.TypeLawActivated, Payload: event.LawActivatedPayload{LawID: "law-1", ActivatedAt: now, NextCheckpointAt: now.AddDate(0, 0, checkpoints[0])}})
}

func TestActivateLaw_HappyPath(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	p.Laws.Apply(event.Event{Type: event.TypeLawCreated, Payload: event.LawCreatedPayload{LawID: "law-1", Checkpoints: []int{30, 90}, CreatedAt: now}})

	cmd := ActivateLaw{CommandID: "c1", LawID: "law-1"}
	events, err := cmd.Handle(now, p, policy.Default())
	require.NoError(t, err)
	payload := events[0].Payload.(event.LawActivatedPayload)
	assert.Equal(t, now.AddDate(0, 0, 30), payload.NextCheckpointAt)
}

func TestActivateLaw_RejectsNonDraft(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	applyLawCreatedAndActivated(p, now, []int{30, 90})

	cmd := ActivateLaw{CommandID: "c1", LawID: "law-1"}
	_, err := cmd.Handle(now, p, policy.Default())
	require.Error(t, err)
}

func TestCompleteReview_Continue(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newTestProjections()
	applyLawCreatedAndActivated(p, now, []int{30, 90, 180, 365})
	p.Laws.Apply(event.Event{Type: event.TypeLawReviewTriggered, Payload: event.LawReviewTriggeredPayload{LawID: "law-1", CheckpointIndex: 0, TriggeredAt: now.AddDate(0, 0, 31)}})

	cmd := CompleteReview{CommandID: "c1", LawID: "law-1", Outcome: ReviewContinue}
	reviewedAt := now.AddDate(0, 0, 31)
	events, err := cmd.Handle(reviewedAt, p, policy.Default())
	require.NoError(t, err)
	payload := events[0].Payload.(event.LawReviewCompletedPayload)
	assert.Equal(t, string(policy.LawActive), payload.NewStatus)
	require.NotNil(t, payload.NextCheckpointAt)
	assert.Equal(t, reviewedAt.AddDate(0, 0, 90), *payload.NextCheckpointAt)
}

func TestCompleteReview_Sunset(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newTestProjections()
	applyLawCreatedAndActivated(p, now, []int{30, 90})
	p.Laws.Apply(event.Event{Type: event.TypeLawReviewTriggered, Payload: event.LawReviewTriggeredPayload{LawID: "law-1", CheckpointIndex: 0, TriggeredAt: now.AddDate(0, 0, 31)}})

	cmd := CompleteReview{CommandID: "c1", LawID: "law-1", Outcome: ReviewSunset}
	events, err := cmd.Handle(now.AddDate(0, 0, 31), p, policy.Default())
	require.NoError(t, err)
	payload := events[0].Payload.(event.LawReviewCompletedPayload)
	assert.Equal(t, string(policy.LawSunset), payload.NewStatus)
}

func TestCompleteReview_RejectsWhenNotInReview(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	applyLawCreatedAndActivated(p, now, []int{30, 90})

	cmd := CompleteReview{CommandID: "c1", LawID: "law-1", Outcome: ReviewContinue}
	_, err := cmd.Handle(now, p, policy.Default())
	require.Error(t, err)
}
