package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	assert.Equal(t, "serve", mcpServeCmd.Use)
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
}

func TestMCPServe_NotConfigured(t *testing.T) {
	cleanup := setupServices(&Services{})
	defer cleanup()

	_, err := runRoot(t, "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp services not configured")
}

func TestMCPServe_PortOutOfRange(t *testing.T) {
	cleanup := setupServices(&Services{Salary: &mockSalaryService{}, Batch: &mockBatchSync{}})
	defer cleanup()

	_, err := runRoot(t, "mcp", "serve", "--port", "70000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
