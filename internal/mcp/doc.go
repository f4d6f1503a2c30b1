// Package mcp provides the Model Context Protocol (MCP) server that guards
// the ROI calculator config file, using mcp-go.
//
// The server exposes four tools to the host runtime:
//
//   - roi_config_status: health of the guarded file (existence, version,
//     last-modified time, content hash)
//   - roi_config_read: the full document or one top-level section
//   - roi_config_research: a templated research prompt, no file I/O
//   - roi_config_apply: confirmed writes, always preceded by a backup
//
// # Implementation
//
// The package uses the mcp-go library (github.com/mark3labs/mcp-go) and
// communicates over stdin/stdout using JSON-RPC 2.0 as specified by the MCP
// standard.
//
// # Security
//
// Exactly one file is ever readable or writable, fixed at startup:
//   - Path validation rejects traversal and reserved system directories
//   - Section names are validated so lookups can never leave the document
//   - Writes require an explicit user_confirmed=true argument
//   - Every write is preceded by a timestamped backup; a failed backup
//     aborts the write
//
// # Usage
//
// The server is typically started as a subprocess by AI assistants that
// support MCP integration:
//
//	roi-config-mcp serve
//
// It reads JSON-RPC requests from stdin and writes responses to stdout
// until it receives EOF or is terminated. All tool failures are returned as
// structured error results, never as protocol errors.
package mcp
