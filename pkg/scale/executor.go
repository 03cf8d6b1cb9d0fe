package scale

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const DefaultConcurrency = 5

// Executor applies scale plans against the cluster. Dry-run gates only the
// mutating patch call; reads always go to the live cluster so that reported
// values reflect real state.
type Executor struct {
	client      ClusterClient
	dryRun      bool
	concurrency int
	log         *zap.Logger
}

func NewExecutor(client ClusterClient, dryRun bool, concurrency int, log *zap.Logger) *Executor {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Executor{
		client:      client,
		dryRun:      dryRun,
		concurrency: concurrency,
		log:         log,
	}
}

// ScaleDown applies the plan one deployment at a time. Each entry's live
// replica count is read immediately before its patch and recorded in the
// returned snapshot, which is what a later scale up restores from. A failed
// read skips the entry entirely; a failed patch leaves no snapshot gap,
// since the read already succeeded.
func (e *Executor) ScaleDown(ctx context.Context, plan *Plan) (Report, Snapshot) {
	e.log.Info("Scaling down deployments",
		zap.String("namespace", plan.Namespace),
		zap.Bool("dryRun", e.dryRun))

	snapshot := make(Snapshot)
	report := make(Report, 0, len(plan.Entries))

	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			report = append(report, e.failed(plan.Namespace, entry.Name, err))
			continue
		}

		replicas, err := e.client.GetReplicas(ctx, plan.Namespace, entry.Name)
		if err != nil {
			report = append(report, e.failed(plan.Namespace, entry.Name, &ReadError{Name: entry.Name, Err: err}))
			continue
		}
		snapshot[entry.Name] = replicas

		report = append(report, e.apply(ctx, plan.Namespace, entry.Name, entry.Target))
	}

	return report, snapshot
}

// ScaleUp applies the plan concurrently. Every entry is dispatched before
// any result is awaited, each task writes its own outcome slot, and the call
// returns only once all tasks have finished. One deployment's failure never
// blocks or cancels the others; a cancelled context marks tasks that have
// not yet started as failed. Patch ordering between entries is unspecified.
func (e *Executor) ScaleUp(ctx context.Context, plan *Plan) Report {
	e.log.Info("Scaling up deployments",
		zap.String("namespace", plan.Namespace),
		zap.Bool("dryRun", e.dryRun))

	report := make(Report, len(plan.Entries))
	sem := make(chan struct{}, e.concurrency)

	var wg sync.WaitGroup
	for i, entry := range plan.Entries {
		wg.Add(1)
		go func(i int, entry PlanEntry) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				report[i] = e.failed(plan.Namespace, entry.Name, err)
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				report[i] = e.failed(plan.Namespace, entry.Name, ctx.Err())
				return
			}
			defer func() { <-sem }()

			report[i] = e.apply(ctx, plan.Namespace, entry.Name, entry.Target)
		}(i, entry)
	}
	wg.Wait()

	return report
}

func (e *Executor) apply(ctx context.Context, namespace, name string, replicas int32) Outcome {
	if e.dryRun {
		e.log.Info("Simulated scaling deployment",
			zap.String("namespace", namespace),
			zap.String("name", name),
			zap.Int32("replicas", replicas))
		return Outcome{Name: name, Replicas: replicas, Status: StatusSimulated}
	}

	if err := e.client.ScaleDeployment(ctx, namespace, name, replicas); err != nil {
		return e.failed(namespace, name, &PatchError{Name: name, Err: err})
	}

	e.log.Info("Scaled deployment",
		zap.String("namespace", namespace),
		zap.String("name", name),
		zap.Int32("replicas", replicas))
	return Outcome{Name: name, Replicas: replicas, Status: StatusApplied}
}

func (e *Executor) failed(namespace, name string, err error) Outcome {
	e.log.Error("Failed to scale deployment",
		zap.String("namespace", namespace),
		zap.String("name", name),
		zap.Error(err))
	return Outcome{Name: name, Status: StatusFailed, Err: err}
}
