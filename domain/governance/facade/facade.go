// Package facade is the kernel's application service (spec §4.8): it
// orchestrates loading a stream's current version, invoking a command
// handler as a pure function, appending the resulting events under
// optimistic concurrency, and folding those events back into
// projections. It is the only place in the kernel that touches the
// event log and the clock together.
package facade

import (
	"context"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/command"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/projection"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/tick"
	"github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/eventlog"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/logging"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/clock"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/metrics"
)

// Kernel wires together the event log, the clock, the safety policy,
// and the projections every command handler and the tick engine read.
type Kernel struct {
	log         eventlog.Log
	clock       clock.Provider
	safety      policy.SafetyPolicy
	logger      *logging.Logger
	metrics     *metrics.Kernel
	projections *command.Projections
}

// WithMetrics attaches a metrics.Kernel that every subsequent command
// method and Tick call reports to. Optional: a Kernel with no metrics attached
// behaves identically, just without the Prometheus collectors.
func (k *Kernel) WithMetrics(m *metrics.Kernel) *Kernel {
	k.metrics = m
	return k
}

// New constructs a Kernel over an existing log, rebuilding projections
// from its full history (spec §5: projections are replayable folds,
// never a second source of truth).
func New(ctx context.Context, log eventlog.Log, clk clock.Provider, safety policy.SafetyPolicy, logger *logging.Logger) (*Kernel, error) {
	k := &Kernel{
		log:    log,
		clock:  clk,
		safety: safety,
		logger: logger,
		projections: &command.Projections{
			Workspaces: projection.NewWorkspaceRegistry(),
			Delegation: projection.NewDelegationGraph(),
			Laws:       projection.NewLawRegistry(),
			Budgets:    projection.NewBudgetRegistry(),
			Suppliers:  projection.NewSupplierRegistry(),
			Tenders:    projection.NewTenderRegistry(),
			Contracts:  projection.NewContractRegistry(),
		},
	}
	if err := k.rebuild(ctx); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Kernel) rebuild(ctx context.Context) error {
	events, err := k.log.LoadAll(ctx)
	if err != nil {
		return kernelerrors.LogUnavailable(err)
	}
	for _, ev := range events {
		k.apply(ev)
	}
	return nil
}

func (k *Kernel) apply(ev event.Event) {
	k.projections.Workspaces.Apply(ev)
	k.projections.Delegation.Apply(ev)
	k.projections.Laws.Apply(ev)
	k.projections.Budgets.Apply(ev)
	k.projections.Suppliers.Apply(ev)
	k.projections.Tenders.Apply(ev)
	k.projections.Contracts.Apply(ev)
}

// handle is the signature every command.Handle closes over once bound
// to its concrete arguments, letting execute stay generic despite the
// handlers' heterogeneous (now, projections[, safety]) signatures.
type handle func(now time.Time, p *command.Projections) ([]event.Event, error)

// execute runs load-version -> handle -> append -> apply for a single
// command against streamID. A version conflict is retried exactly once
// against a freshly reloaded version before surfacing to the caller
// (spec §4.8); a repeat of an already-applied commandID is a silent
// no-op success, since its effects already live in the projections
// from a prior call or from startup replay.
func (k *Kernel) execute(ctx context.Context, streamID string, streamType event.StreamType, commandID, label string, h handle) ([]event.Event, error) {
	start := k.clock.Now()
	events, err := k.executeOnce(ctx, streamID, streamType, commandID, h)
	duration := k.clock.Now().Sub(start)
	if k.logger != nil {
		k.logger.LogCommand(ctx, label, streamID, duration, err)
	}
	if k.metrics != nil {
		errCode := ""
		if err != nil {
			errCode = string(kernelerrors.Code(err))
		} else {
			k.metrics.ObserveAppend(string(streamType), len(events))
		}
		k.metrics.ObserveCommand(label, duration, errCode)
	}
	return events, err
}

func (k *Kernel) executeOnce(ctx context.Context, streamID string, streamType event.StreamType, commandID string, h handle) ([]event.Event, error) {
	alreadyApplied, err := k.log.HasCommand(ctx, streamID, commandID)
	if err != nil {
		return nil, kernelerrors.LogUnavailable(err)
	}
	if alreadyApplied {
		return nil, nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		_, version, err := k.log.LoadStream(ctx, streamID)
		if err != nil {
			return nil, kernelerrors.LogUnavailable(err)
		}

		now := k.clock.Now()
		newEvents, err := h(now, k.projections)
		if err != nil {
			return nil, err
		}

		if err := k.log.Append(ctx, streamID, streamType, version, commandID, newEvents); err != nil {
			if kernelerrors.Is(err, kernelerrors.ErrCodeVersionConflict) && attempt == 0 {
				continue
			}
			return nil, err
		}

		for _, ev := range newEvents {
			k.apply(ev)
		}
		return newEvents, nil
	}
	return nil, kernelerrors.VersionConflict(streamID, 0, 0)
}

// --- Workspace ------------------------------------------------------

func (k *Kernel) CreateWorkspace(ctx context.Context, cmd command.CreateWorkspace) ([]event.Event, error) {
	return k.execute(ctx, cmd.WorkspaceID, event.StreamWorkspace, cmd.CommandID, "CreateWorkspace",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p) })
}

func (k *Kernel) ArchiveWorkspace(ctx context.Context, cmd command.ArchiveWorkspace) ([]event.Event, error) {
	return k.execute(ctx, cmd.WorkspaceID, event.StreamWorkspace, cmd.CommandID, "ArchiveWorkspace",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p) })
}

// --- Delegation -------------------------------------------------------

func (k *Kernel) DelegateDecisionRight(ctx context.Context, cmd command.DelegateDecisionRight) ([]event.Event, error) {
	return k.execute(ctx, cmd.DelegationID, event.StreamDelegation, cmd.CommandID, "DelegateDecisionRight",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) RevokeDelegation(ctx context.Context, cmd command.RevokeDelegation) ([]event.Event, error) {
	return k.execute(ctx, cmd.DelegationID, event.StreamDelegation, cmd.CommandID, "RevokeDelegation",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

// --- Law --------------------------------------------------------------

func (k *Kernel) CreateLaw(ctx context.Context, cmd command.CreateLaw) ([]event.Event, error) {
	return k.execute(ctx, cmd.LawID, event.StreamLaw, cmd.CommandID, "CreateLaw",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) ActivateLaw(ctx context.Context, cmd command.ActivateLaw) ([]event.Event, error) {
	return k.execute(ctx, cmd.LawID, event.StreamLaw, cmd.CommandID, "ActivateLaw",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) CompleteReview(ctx context.Context, cmd command.CompleteReview) ([]event.Event, error) {
	return k.execute(ctx, cmd.LawID, event.StreamLaw, cmd.CommandID, "CompleteReview",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

// --- Budget -------------------------------------------------------------

func (k *Kernel) CreateBudget(ctx context.Context, cmd command.CreateBudget) ([]event.Event, error) {
	return k.execute(ctx, cmd.BudgetID, event.StreamBudget, cmd.CommandID, "CreateBudget",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) ActivateBudget(ctx context.Context, cmd command.ActivateBudget) ([]event.Event, error) {
	return k.execute(ctx, cmd.BudgetID, event.StreamBudget, cmd.CommandID, "ActivateBudget",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) AdjustAllocation(ctx context.Context, cmd command.AdjustAllocation) ([]event.Event, error) {
	return k.execute(ctx, cmd.BudgetID, event.StreamBudget, cmd.CommandID, "AdjustAllocation",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) ApproveExpenditure(ctx context.Context, cmd command.ApproveExpenditure) ([]event.Event, error) {
	return k.execute(ctx, cmd.BudgetID, event.StreamBudget, cmd.CommandID, "ApproveExpenditure",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) CloseBudget(ctx context.Context, cmd command.CloseBudget) ([]event.Event, error) {
	return k.execute(ctx, cmd.BudgetID, event.StreamBudget, cmd.CommandID, "CloseBudget",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

// --- Procurement --------------------------------------------------------

func (k *Kernel) RegisterSupplier(ctx context.Context, cmd command.RegisterSupplier) ([]event.Event, error) {
	return k.execute(ctx, cmd.SupplierID, event.StreamSupplier, cmd.CommandID, "RegisterSupplier",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) CreateTender(ctx context.Context, cmd command.CreateTender) ([]event.Event, error) {
	return k.execute(ctx, cmd.TenderID, event.StreamTender, cmd.CommandID, "CreateTender",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) OpenTender(ctx context.Context, cmd command.OpenTender) ([]event.Event, error) {
	return k.execute(ctx, cmd.TenderID, event.StreamTender, cmd.CommandID, "OpenTender",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) AwardTender(ctx context.Context, cmd command.AwardTender) ([]event.Event, error) {
	return k.execute(ctx, cmd.TenderID, event.StreamTender, cmd.CommandID, "AwardTender",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

func (k *Kernel) CloseTender(ctx context.Context, cmd command.CloseTender) ([]event.Event, error) {
	return k.execute(ctx, cmd.TenderID, event.StreamTender, cmd.CommandID, "CloseTender",
		func(now time.Time, p *command.Projections) ([]event.Event, error) { return cmd.Handle(now, p, k.safety) })
}

// Tick runs the reflex engine once against the current projections and
// appends every resulting batch to its stream, retrying a version
// conflict once per batch just like every other command (spec §4.6,
// §4.8).
func (k *Kernel) Tick(ctx context.Context) ([]event.Event, error) {
	now := k.clock.Now()
	batches, err := tick.Run(now, k.safety, k.projections)
	if err != nil {
		return nil, err
	}

	var applied []event.Event
	for _, batch := range batches {
		if err := k.appendBatch(ctx, batch); err != nil {
			return applied, err
		}
		applied = append(applied, batch.Events...)
		for _, ev := range batch.Events {
			if k.logger != nil {
				k.logger.LogReflexEvent(ctx, string(ev.Type), batch.StreamID, nil)
			}
			if k.metrics != nil {
				k.metrics.ObserveReflexEvent(string(ev.Type))
			}
		}
	}

	if k.metrics != nil {
		health := projection.Compute(k.projections.Delegation, k.projections.Suppliers, k.projections.Laws, k.safety, now)
		k.metrics.DelegationGini.Set(health.DelegationGini)
		k.metrics.SupplierGini.Set(health.SupplierGini)
		k.metrics.OverdueReviews.Set(float64(health.OverdueReviewCount))
	}
	return applied, nil
}

func (k *Kernel) appendBatch(ctx context.Context, batch tick.Batch) error {
	for attempt := 0; attempt < 2; attempt++ {
		_, version, err := k.log.LoadStream(ctx, batch.StreamID)
		if err != nil {
			return kernelerrors.LogUnavailable(err)
		}
		if err := k.log.Append(ctx, batch.StreamID, batch.StreamType, version, "", batch.Events); err != nil {
			if kernelerrors.Is(err, kernelerrors.ErrCodeVersionConflict) && attempt == 0 {
				continue
			}
			return err
		}
		for _, ev := range batch.Events {
			k.apply(ev)
		}
		return nil
	}
	return kernelerrors.VersionConflict(batch.StreamID, 0, 0)
}

// Projections exposes the kernel's read models for queries. Callers
// must not mutate the returned registries directly.
func (k *Kernel) Projections() *command.Projections {
	return k.projections
}
