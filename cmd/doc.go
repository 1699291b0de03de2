// Package cmd implements the command-line interface for mcpgmail.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or SSE
//   - auth: Run the OAuth consent flow and store the resulting token
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
