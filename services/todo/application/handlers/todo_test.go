package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"completed": true}`, true},
		{`{"completed": false}`, false},
		{`{"completed": 1}`, true},
		{`{"completed": 0}`, false},
		{`{"completed": 0.0}`, false},
		{`{"completed": -2.5}`, true},
		{`{"completed": "yes"}`, true},
		{`{"completed": "false"}`, true},
		{`{"completed": ""}`, false},
		{`{"completed": null}`, false},
		{`{"completed": []}`, false},
		{`{"completed": [0]}`, true},
		{`{"completed": {}}`, false},
		{`{"completed": {"a": 1}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req UpdateTodoRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			require.True(t, req.Completed.Set)
			require.NotNil(t, req.Completed.Ptr())
			assert.Equal(t, tt.want, *req.Completed.Ptr())
		})
	}
}

func TestTruthy_Absent(t *testing.T) {
	var req UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"text": "x"}`), &req))
	assert.False(t, req.Completed.Set)
	assert.Nil(t, req.Completed.Ptr())
	require.NotNil(t, req.Text)
	assert.Equal(t, "x", *req.Text)
}
