package scale

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Planner computes scale plans from live cluster state. It performs reads
// only; nothing here mutates the cluster.
type Planner struct {
	client    ClusterClient
	namespace string
	log       *zap.Logger
}

func NewPlanner(client ClusterClient, namespace string, log *zap.Logger) *Planner {
	return &Planner{
		client:    client,
		namespace: namespace,
		log:       log,
	}
}

// PlanScaleDown proposes scaling every deployment in the namespace to zero.
func (p *Planner) PlanScaleDown(ctx context.Context) (*Plan, error) {
	deploys, err := p.client.ListDeployments(ctx, p.namespace)
	if err != nil {
		return nil, &DiscoveryError{Namespace: p.namespace, Err: err}
	}

	plan := &Plan{
		Namespace: p.namespace,
		Direction: DirectionDown,
		Entries:   make([]PlanEntry, 0, len(deploys)),
	}
	for _, deploy := range deploys {
		plan.Entries = append(plan.Entries, PlanEntry{
			Name:    deploy.Name,
			Current: deploy.Replicas,
			Target:  0,
		})
	}
	sortEntries(plan.Entries)

	p.log.Info("Planned scale down",
		zap.String("namespace", p.namespace),
		zap.Int("deployments", len(plan.Entries)))

	return plan, nil
}

// PlanScaleUp proposes restoring every deployment in the namespace to its
// snapshot replica count. Deployments present in the cluster but absent from
// the snapshot stay in the plan with a target of zero, so the fallback is
// visible at confirmation time instead of being silently skipped.
func (p *Planner) PlanScaleUp(ctx context.Context, snapshot Snapshot) (*Plan, error) {
	deploys, err := p.client.ListDeployments(ctx, p.namespace)
	if err != nil {
		return nil, &DiscoveryError{Namespace: p.namespace, Err: err}
	}

	plan := &Plan{
		Namespace: p.namespace,
		Direction: DirectionUp,
		Entries:   make([]PlanEntry, 0, len(deploys)),
	}
	for _, deploy := range deploys {
		plan.Entries = append(plan.Entries, PlanEntry{
			Name:    deploy.Name,
			Current: deploy.Replicas,
			Target:  snapshot[deploy.Name],
		})
	}
	sortEntries(plan.Entries)

	p.log.Info("Planned scale up",
		zap.String("namespace", p.namespace),
		zap.Int("deployments", len(plan.Entries)))

	return plan, nil
}

func sortEntries(entries []PlanEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}
