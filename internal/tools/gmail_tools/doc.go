// Package gmail_tools registers the Gmail tool catalog on the MCP server:
// sending (with attachments), drafts, search and reading, labels, batch
// operations, and the account profile.
package gmail_tools
