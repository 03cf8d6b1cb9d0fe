package scale

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Options selects the operation mode for a single run. Flags combine the
// same way the CLI surface does; Run makes exactly one pass.
type Options struct {
	Namespace   string
	ScaleDown   bool
	ScaleUp     bool
	DryRun      bool
	Backup      bool
	Restore     bool
	Concurrency int
}

// Orchestrator sequences planning, confirmation, execution, and snapshot
// persistence. All collaborators are injected at construction; it holds no
// process-wide state.
type Orchestrator struct {
	store StateStore
	gate  ConfirmationGate
	opts  Options
	log   *zap.Logger

	planner  *Planner
	executor *Executor
}

func NewOrchestrator(client ClusterClient, store StateStore, gate ConfirmationGate, opts Options, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store: store,
		gate:  gate,
		opts:  opts,
		log:   log,

		planner:  NewPlanner(client, opts.Namespace, log),
		executor: NewExecutor(client, opts.DryRun, opts.Concurrency, log),
	}
}

// Run executes one pass of the selected mode. Per-deployment failures are
// reported in outcome logs and never fail the run; only discovery, snapshot
// persistence, and confirmation-prompt errors propagate.
func (o *Orchestrator) Run(ctx context.Context) error {
	switch {
	case o.opts.ScaleDown && o.opts.ScaleUp:
		o.log.Info("Performing scale down and scale up", zap.String("namespace", o.opts.Namespace))
		return o.runDownUp(ctx)
	case o.opts.ScaleDown:
		o.log.Info("Performing scale down", zap.String("namespace", o.opts.Namespace))
		return o.runDown(ctx)
	case o.opts.ScaleUp:
		o.log.Info("Performing scale up", zap.String("namespace", o.opts.Namespace))
		return o.runUp(ctx)
	case o.opts.DryRun:
		o.log.Info("Performing a dry run", zap.String("namespace", o.opts.Namespace))
		return o.runDownUp(ctx)
	default:
		o.log.Info("No action specified", zap.String("namespace", o.opts.Namespace))
		return nil
	}
}

func (o *Orchestrator) runDownUp(ctx context.Context) error {
	down, err := o.planner.PlanScaleDown(ctx)
	if err != nil {
		return err
	}

	// The up plan shown at confirmation restores the planning-time counts.
	// Execution restores the observed snapshot instead, so replica drift
	// between planning and the scale down cannot corrupt the restore.
	up, err := o.planner.PlanScaleUp(ctx, down.Snapshot())
	if err != nil {
		return err
	}

	if ok, err := o.confirm(ctx, down, up); err != nil || !ok {
		return err
	}

	downReport, observed := o.executor.ScaleDown(ctx, down)
	o.logReport("Scale down finished", downReport)

	if err := o.persist(observed); err != nil {
		return fmt.Errorf("backing up replica counts (namespace left scaled down): %w", err)
	}

	upReport := o.executor.ScaleUp(ctx, restorePlan(o.opts.Namespace, observed))
	o.logReport("Scale up finished", upReport)
	return nil
}

func (o *Orchestrator) runDown(ctx context.Context) error {
	down, err := o.planner.PlanScaleDown(ctx)
	if err != nil {
		return err
	}

	if ok, err := o.confirm(ctx, down, nil); err != nil || !ok {
		return err
	}

	report, observed := o.executor.ScaleDown(ctx, down)
	o.logReport("Scale down finished", report)

	if err := o.persist(observed); err != nil {
		return fmt.Errorf("backing up replica counts: %w", err)
	}
	return nil
}

func (o *Orchestrator) runUp(ctx context.Context) error {
	snapshot, err := o.store.Load(o.opts.Namespace)
	if errors.Is(err, ErrSnapshotNotFound) {
		o.log.Error("No saved replica counts found, deployments will scale to 0",
			zap.String("namespace", o.opts.Namespace))
		snapshot = Snapshot{}
	} else if err != nil {
		return err
	} else if o.opts.Restore {
		o.log.Info("Restored original replica counts",
			zap.String("namespace", o.opts.Namespace))
	}

	up, err := o.planner.PlanScaleUp(ctx, snapshot)
	if err != nil {
		return err
	}

	if ok, err := o.confirm(ctx, nil, up); err != nil || !ok {
		return err
	}

	report := o.executor.ScaleUp(ctx, up)
	o.logReport("Scale up finished", report)
	return nil
}

func (o *Orchestrator) confirm(ctx context.Context, down, up *Plan) (bool, error) {
	ok, err := o.gate.Confirm(ctx, down, up)
	if err != nil {
		return false, err
	}
	if !ok {
		o.log.Info("Changes canceled by the user", zap.String("namespace", o.opts.Namespace))
		return false, nil
	}
	return true, nil
}

func (o *Orchestrator) persist(observed Snapshot) error {
	if !o.opts.Backup {
		return nil
	}

	if err := o.store.Save(o.opts.Namespace, observed); err != nil {
		return err
	}
	o.log.Info("Backed up original replica counts",
		zap.String("namespace", o.opts.Namespace),
		zap.Int("deployments", len(observed)))
	return nil
}

func (o *Orchestrator) logReport(msg string, report Report) {
	applied, simulated, failed := report.Counts()
	o.log.Info(msg,
		zap.String("namespace", o.opts.Namespace),
		zap.Int("applied", applied),
		zap.Int("simulated", simulated),
		zap.Int("failed", failed))
}

// restorePlan turns the observed snapshot into the up-phase execution plan
// for the combined mode. Deployments missing from the snapshot had a failed
// pre-read and were never scaled down, so they are not restored either.
func restorePlan(namespace string, observed Snapshot) *Plan {
	plan := &Plan{
		Namespace: namespace,
		Direction: DirectionUp,
		Entries:   make([]PlanEntry, 0, len(observed)),
	}
	for name, replicas := range observed {
		plan.Entries = append(plan.Entries, PlanEntry{Name: name, Target: replicas})
	}
	sort.Slice(plan.Entries, func(i, j int) bool {
		return plan.Entries[i].Name < plan.Entries[j].Name
	})
	return plan
}
