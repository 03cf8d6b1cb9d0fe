package scale

import (
	"fmt"
	"io"
)

// Deployment is the core's view of a cluster workload. It carries only the
// fields the scaler reads and mutates, decoupled from the apps/v1 wire type.
type Deployment struct {
	Namespace string
	Name      string
	Replicas  int32
}

// Snapshot maps deployment name to the replica count observed for it.
// Names are unique within a namespace, so the namespace is carried by
// whatever holds the snapshot, not by the entries.
type Snapshot map[string]int32

type Direction int

const (
	DirectionDown Direction = iota
	DirectionUp
)

func (d Direction) String() string {
	if d == DirectionUp {
		return "up"
	}
	return "down"
}

// Plan is the computed set of replica changes for one direction.
type Plan struct {
	Namespace string
	Direction Direction
	Entries   []PlanEntry
}

// PlanEntry records the replica transition proposed for one deployment.
// Current is the value observed at planning time and may drift before
// execution; the executor re-reads before mutating.
type PlanEntry struct {
	Name    string
	Current int32
	Target  int32
}

// Snapshot returns the planning-time replica counts, used by the combined
// down+up mode to derive restore targets before anything has been scaled.
func (p *Plan) Snapshot() Snapshot {
	snap := make(Snapshot, len(p.Entries))
	for _, entry := range p.Entries {
		snap[entry.Name] = entry.Current
	}
	return snap
}

// Render writes the human-readable before->after summary shown at
// confirmation time.
func (p *Plan) Render(w io.Writer) {
	fmt.Fprintf(w, "Scale %s in namespace %s:\n", p.Direction, p.Namespace)
	for _, entry := range p.Entries {
		fmt.Fprintf(w, "- Deployment: %s, Replicas: %d -> %d\n", entry.Name, entry.Current, entry.Target)
	}
}

type OutcomeStatus int

const (
	// StatusApplied means the replica patch was sent and accepted.
	StatusApplied OutcomeStatus = iota
	// StatusSimulated means dry-run skipped the patch that would have been sent.
	StatusSimulated
	// StatusFailed means the read or patch for this deployment failed.
	StatusFailed
)

// Outcome is the per-deployment result of executing one plan entry. A run
// never fails as a whole because a single outcome failed.
type Outcome struct {
	Name     string
	Replicas int32
	Status   OutcomeStatus
	Err      error
}

// Report aggregates the outcomes of one executed phase.
type Report []Outcome

func (r Report) Counts() (applied, simulated, failed int) {
	for _, outcome := range r {
		switch outcome.Status {
		case StatusApplied:
			applied++
		case StatusSimulated:
			simulated++
		case StatusFailed:
			failed++
		}
	}
	return
}
