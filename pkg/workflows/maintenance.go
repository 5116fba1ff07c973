package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// MaintenanceTaskQueue is the task queue served by the worker process.
const MaintenanceTaskQueue = "todo-maintenance"

// CompletedClearer is the slice of the todo service the activities need.
type CompletedClearer interface {
	ClearCompleted(ctx context.Context) (int, error)
}

// ClearCompletedResult is returned by ClearCompletedWorkflow.
type ClearCompletedResult struct {
	Cleared int `json:"cleared"`
}

// Activities holds the todo maintenance activities. Register a pointer to it
// on a worker; Temporal names each activity after its method.
type Activities struct {
	Todos CompletedClearer
}

// ClearCompleted removes every completed todo.
func (a *Activities) ClearCompleted(ctx context.Context) (int, error) {
	n, err := a.Todos.ClearCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear completed todos: %w", err)
	}
	return n, nil
}

// ClearCompletedWorkflow runs the ClearCompleted activity with retries. It is
// meant to be started on a schedule (or by hand) against MaintenanceTaskQueue.
func ClearCompletedWorkflow(ctx workflow.Context) (ClearCompletedResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	})

	var a *Activities
	var cleared int
	if err := workflow.ExecuteActivity(ctx, a.ClearCompleted).Get(ctx, &cleared); err != nil {
		return ClearCompletedResult{}, err
	}

	workflow.GetLogger(ctx).Info("cleared completed todos", "cleared", cleared)
	return ClearCompletedResult{Cleared: cleared}, nil
}

// NewMaintenanceWorker returns a worker on MaintenanceTaskQueue with the
// maintenance workflow and activities registered. The caller runs it.
func NewMaintenanceWorker(c client.Client, todos CompletedClearer) worker.Worker {
	w := worker.New(c, MaintenanceTaskQueue, worker.Options{})
	w.RegisterWorkflow(ClearCompletedWorkflow)
	w.RegisterActivity(&Activities{Todos: todos})
	return w
}

// StartClearCompleted starts a ClearCompletedWorkflow run and returns its
// run ID without waiting for the result.
func (tc *TemporalClient) StartClearCompleted(ctx context.Context) (string, error) {
	run, err := tc.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("clear-completed-%d", time.Now().UnixNano()),
		TaskQueue: MaintenanceTaskQueue,
	}, ClearCompletedWorkflow)
	if err != nil {
		return "", fmt.Errorf("start clear-completed workflow: %w", err)
	}
	return run.GetRunID(), nil
}
