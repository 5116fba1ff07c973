package workflows

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/logger"
)

func TestTemporalLogger_WithKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	base := temporalLogger{log: logger.NewWithWriter(&config.Config{LogLevel: "debug"}, &buf)}

	base.With("WorkflowID", "clear-completed-1").Warn("activity retry", "Attempt", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "activity retry", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "clear-completed-1", entry["WorkflowID"])
	assert.EqualValues(t, 2, entry["Attempt"])
}
