package scale

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func TestExecutorScaleDownThenUpRestoresReplicas(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		newDeployment("api", 3),
		newDeployment("worker", 2),
	)
	log := zaptest.NewLogger(t)
	client := NewKubeClient(clientset)
	executor := NewExecutor(client, false, 2, log)
	planner := NewPlanner(client, testNamespace, log)
	ctx := context.Background()

	down, err := planner.PlanScaleDown(ctx)
	require.NoError(t, err)

	report, snapshot := executor.ScaleDown(ctx, down)
	require.Len(t, report, 2)
	for _, outcome := range report {
		assert.Equal(t, StatusApplied, outcome.Status)
		assert.Equal(t, int32(0), outcome.Replicas)
	}
	assert.Equal(t, Snapshot{"api": 3, "worker": 2}, snapshot)
	assert.Equal(t, int32(0), replicasFor(t, clientset, "api"))
	assert.Equal(t, int32(0), replicasFor(t, clientset, "worker"))

	up, err := planner.PlanScaleUp(ctx, snapshot)
	require.NoError(t, err)

	upReport := executor.ScaleUp(ctx, up)
	require.Len(t, upReport, 2)
	for _, outcome := range upReport {
		assert.Equal(t, StatusApplied, outcome.Status)
	}
	assert.Equal(t, int32(3), replicasFor(t, clientset, "api"))
	assert.Equal(t, int32(2), replicasFor(t, clientset, "worker"))
}

func TestExecutorScaleDownReadErrorSkipsEntry(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		newDeployment("api", 3),
		newDeployment("worker", 2),
	)
	clientset.PrependReactor("get", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.(k8stesting.GetAction).GetName() == "worker" {
			return true, nil, errors.New("etcd timeout")
		}
		return false, nil, nil
	})
	log := zaptest.NewLogger(t)
	client := NewKubeClient(clientset)
	executor := NewExecutor(client, false, 1, log)
	ctx := context.Background()

	plan, err := NewPlanner(client, testNamespace, log).PlanScaleDown(ctx)
	require.NoError(t, err)

	report, snapshot := executor.ScaleDown(ctx, plan)
	require.Len(t, report, 2)

	assert.Equal(t, StatusApplied, report[0].Status)
	assert.Equal(t, StatusFailed, report[1].Status)

	var readErr *ReadError
	require.ErrorAs(t, report[1].Err, &readErr)
	assert.Equal(t, "worker", readErr.Name)

	// The failed read leaves no snapshot entry and no patch was attempted.
	assert.Equal(t, Snapshot{"api": 3}, snapshot)
	assert.Equal(t, int32(0), replicasFor(t, clientset, "api"))
	assert.Equal(t, int32(2), replicasFor(t, clientset, "worker"))
}

func TestExecutorScaleDownPatchErrorContinues(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		newDeployment("api", 3),
		newDeployment("worker", 2),
	)
	clientset.PrependReactor("patch", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.(k8stesting.PatchAction).GetName() == "api" {
			return true, nil, errors.New("conflict")
		}
		return false, nil, nil
	})
	log := zaptest.NewLogger(t)
	client := NewKubeClient(clientset)
	executor := NewExecutor(client, false, 1, log)
	ctx := context.Background()

	plan, err := NewPlanner(client, testNamespace, log).PlanScaleDown(ctx)
	require.NoError(t, err)

	report, snapshot := executor.ScaleDown(ctx, plan)
	require.Len(t, report, 2)

	assert.Equal(t, StatusFailed, report[0].Status)
	var patchErr *PatchError
	require.ErrorAs(t, report[0].Err, &patchErr)

	// The read succeeded, so the snapshot still covers the failed entry.
	assert.Equal(t, Snapshot{"api": 3, "worker": 2}, snapshot)
	assert.Equal(t, StatusApplied, report[1].Status)
	assert.Equal(t, int32(0), replicasFor(t, clientset, "worker"))
}

func TestExecutorDryRunNeverPatches(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		newDeployment("api", 3),
		newDeployment("worker", 2),
	)
	log := zaptest.NewLogger(t)
	client := NewKubeClient(clientset)
	executor := NewExecutor(client, true, 2, log)
	planner := NewPlanner(client, testNamespace, log)
	ctx := context.Background()

	down, err := planner.PlanScaleDown(ctx)
	require.NoError(t, err)

	report, snapshot := executor.ScaleDown(ctx, down)
	for _, outcome := range report {
		assert.Equal(t, StatusSimulated, outcome.Status)
	}

	// Reads still happen for real, so the snapshot reflects live state.
	assert.Equal(t, Snapshot{"api": 3, "worker": 2}, snapshot)

	up, err := planner.PlanScaleUp(ctx, snapshot)
	require.NoError(t, err)
	for _, outcome := range executor.ScaleUp(ctx, up) {
		assert.Equal(t, StatusSimulated, outcome.Status)
	}

	assert.Empty(t, patchActions(clientset))
	assert.Equal(t, int32(3), replicasFor(t, clientset, "api"))
	assert.Equal(t, int32(2), replicasFor(t, clientset, "worker"))
}

func TestExecutorScaleUpFailureIsolation(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		newDeployment("api", 0),
		newDeployment("cache", 0),
		newDeployment("worker", 0),
	)
	clientset.PrependReactor("patch", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.(k8stesting.PatchAction).GetName() == "cache" {
			return true, nil, errors.New("forbidden")
		}
		return false, nil, nil
	})
	log := zaptest.NewLogger(t)
	client := NewKubeClient(clientset)
	executor := NewExecutor(client, false, 2, log)

	plan := &Plan{
		Namespace: testNamespace,
		Direction: DirectionUp,
		Entries: []PlanEntry{
			{Name: "api", Target: 3},
			{Name: "cache", Target: 1},
			{Name: "worker", Target: 2},
		},
	}

	report := executor.ScaleUp(context.Background(), plan)
	require.Len(t, report, 3)

	// Outcome slots line up with plan entries regardless of patch order.
	assert.Equal(t, StatusApplied, report[0].Status)
	assert.Equal(t, StatusFailed, report[1].Status)
	assert.Equal(t, StatusApplied, report[2].Status)

	assert.Equal(t, int32(3), replicasFor(t, clientset, "api"))
	assert.Equal(t, int32(2), replicasFor(t, clientset, "worker"))
}

func TestExecutorScaleUpCancelledContext(t *testing.T) {
	clientset := fake.NewSimpleClientset(newDeployment("api", 0))
	log := zaptest.NewLogger(t)
	executor := NewExecutor(NewKubeClient(clientset), false, 1, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := &Plan{
		Namespace: testNamespace,
		Direction: DirectionUp,
		Entries:   []PlanEntry{{Name: "api", Target: 3}},
	}

	report := executor.ScaleUp(ctx, plan)
	require.Len(t, report, 1)
	assert.Equal(t, StatusFailed, report[0].Status)
	assert.ErrorIs(t, report[0].Err, context.Canceled)
	assert.Empty(t, patchActions(clientset))
}
