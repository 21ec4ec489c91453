// Package mcp provides an MCP (Model Context Protocol) server adapter for paybridge.
// It lets AI assistants compute salaries, inspect authorization and push record batches.
package mcp

import "errors"

// ErrMissingSalaryService is returned when the salary service is not provided.
var ErrMissingSalaryService = errors.New("mcp: salary service is required")

// ErrMissingBatchSync is returned when the batch sync engine is not provided.
var ErrMissingBatchSync = errors.New("mcp: batch sync is required")
