package scale

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned by StateStore.Load when no snapshot has
// been saved for the namespace. I/O and decode failures are returned as
// ordinary errors and must not be conflated with this sentinel.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DiscoveryError means listing the namespace's deployments failed. It is
// fatal for the run, since no plan can be computed or confirmed.
type DiscoveryError struct {
	Namespace string
	Err       error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("listing deployments in namespace %q: %v", e.Namespace, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ReadError means the pre-mutation read of a single deployment failed. The
// entry is skipped, no patch is attempted for it, and no snapshot entry is
// recorded.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading deployment %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// PatchError means the replica mutation for a single deployment failed.
// Other entries are unaffected.
type PatchError struct {
	Name string
	Err  error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("scaling deployment %q: %v", e.Name, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}
