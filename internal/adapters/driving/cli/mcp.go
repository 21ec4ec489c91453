package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server for assistants that review and
push payroll.

Tools: compute_salaries, push_batch and, when login is configured,
auth_status. Resources: paybridge://orgs/{org}/salaries and
paybridge://orgs/{org}/bankfile. Pushes use the credential of --session.

The server speaks JSON-RPC over stdio unless --port is given, in which case
it serves streamable HTTP on 127.0.0.1.

Examples:
  paybridge mcp serve
  paybridge mcp serve --session agent --port 8081`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if salaryService == nil || batchSync == nil {
		return errors.New("mcp services not configured")
	}
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("--port %d out of range", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Salary:   salaryService,
		Batch:    batchSync,
		Auth:     authFlow,
		BankFile: bankFileService,
		Session:  session(),
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		// stdout carries the protocol.
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server on stdio (session %q)\n", session())
		return server.Run(cmd.Context())
	}

	addr := fmt.Sprintf("127.0.0.1:%d", mcpPort)
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
