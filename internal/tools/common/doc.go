// Package common provides shared helpers for MCP tool handlers: argument
// extraction from tool requests and the instrumentation wrapper that records
// metrics and structured logs around every invocation.
package common
