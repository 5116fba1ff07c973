package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

type stubClearer struct {
	n     int
	err   error
	calls int
}

func (s *stubClearer) ClearCompleted(context.Context) (int, error) {
	s.calls++
	return s.n, s.err
}

func TestClearCompletedWorkflow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	clearer := &stubClearer{n: 3}
	env.RegisterActivity(&Activities{Todos: clearer})
	env.ExecuteWorkflow(ClearCompletedWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result ClearCompletedResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 3, result.Cleared)
	assert.Equal(t, 1, clearer.calls)
}

func TestClearCompletedWorkflow_ActivityFails(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	clearer := &stubClearer{err: errors.New("database down")}
	env.RegisterActivity(&Activities{Todos: clearer})
	env.ExecuteWorkflow(ClearCompletedWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
	assert.Equal(t, 5, clearer.calls, "activity is retried up to the policy limit")
}

func TestActivities_ClearCompleted(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivity(&Activities{Todos: &stubClearer{n: 2}})

	val, err := env.ExecuteActivity((&Activities{}).ClearCompleted)
	require.NoError(t, err)

	var n int
	require.NoError(t, val.Get(&n))
	assert.Equal(t, 2, n)
}
