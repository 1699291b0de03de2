package gmail_tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/gmail"
	"github.com/meyannis/mcpgmail/internal/logging"
	"github.com/meyannis/mcpgmail/internal/server"
	"github.com/meyannis/mcpgmail/internal/tools/common"
)

// RegisterSearchTools registers the search and reading tools.
func RegisterSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("search_emails",
		mcp.WithDescription("Search emails using Gmail query syntax (e.g. 'from:user@example.com', 'subject:hello', 'is:unread')"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query, forwarded verbatim"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			query, err := common.RequiredString(args, "query")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return searchAndSummarize(ctx, sc, query, common.OptionalInt(args, "max_results", 10))
		}))

	readTool := mcp.NewTool("read_email",
		mcp.WithDescription("Read the full content of an email by message ID"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to read"),
		),
		mcp.WithBoolean("include_attachments",
			mcp.Description("Include attachment metadata in the output (default: false)"),
		),
	)
	s.AddTool(readTool, common.InstrumentedToolHandler("read_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadEmail(ctx, request, sc)
		}))

	unreadTool := mcp.NewTool("get_unread_emails",
		mcp.WithDescription("Get the most recent unread emails"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 5)"),
		),
	)
	s.AddTool(unreadTool, common.InstrumentedToolHandler("get_unread_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			max := common.OptionalInt(request.GetArguments(), "max_results", 5)
			return searchAndSummarize(ctx, sc, "is:unread", max)
		}))

	importantTool := mcp.NewTool("get_important_emails",
		mcp.WithDescription("Get emails Gmail marked as important"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 5)"),
		),
	)
	s.AddTool(importantTool, common.InstrumentedToolHandler("get_important_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			max := common.OptionalInt(request.GetArguments(), "max_results", 5)
			return searchAndSummarize(ctx, sc, "is:important", max)
		}))

	withAttachmentsTool := mcp.NewTool("get_emails_with_attachments",
		mcp.WithDescription("Get emails that carry attachments"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 5)"),
		),
		mcp.WithString("query",
			mcp.Description("Additional Gmail query terms combined with has:attachment"),
		),
	)
	s.AddTool(withAttachmentsTool, common.InstrumentedToolHandler("get_emails_with_attachments", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			query := "has:attachment"
			if extra := common.OptionalString(args, "query", ""); extra != "" {
				query += " " + extra
			}
			return searchAndSummarize(ctx, sc, query, common.OptionalInt(args, "max_results", 5))
		}))

	recentTool := mcp.NewTool("get_recent_emails",
		mcp.WithDescription("Get emails received in the last N days"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 5)"),
		),
		mcp.WithNumber("days",
			mcp.Description("How many days back to look (default: 7)"),
		),
	)
	s.AddTool(recentTool, common.InstrumentedToolHandler("get_recent_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			days := common.OptionalInt(args, "days", 7)
			query := fmt.Sprintf("newer_than:%dd", days)
			return searchAndSummarize(ctx, sc, query, common.OptionalInt(args, "max_results", 5))
		}))

	summarizeTool := mcp.NewTool("summarize_recent_emails",
		mcp.WithDescription("Produce a compact summary (sender, subject, snippet) of recent emails"),
		mcp.WithNumber("max_emails",
			mcp.Description("Maximum number of emails to summarize (default: 10)"),
		),
		mcp.WithNumber("days",
			mcp.Description("How many days back to look (default: 3)"),
		),
		mcp.WithString("query",
			mcp.Description("Additional Gmail query terms"),
		),
	)
	s.AddTool(summarizeTool, common.InstrumentedToolHandler("summarize_recent_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSummarizeRecent(ctx, request, sc)
		}))

	return nil
}

// fetchSummaries runs a search and loads one summary per hit.
func fetchSummaries(client *gmail.Client, query string, maxResults int64) ([]gmail.MessageSummary, error) {
	ids, err := client.SearchMessages(query, maxResults)
	if err != nil {
		return nil, err
	}

	summaries := make([]gmail.MessageSummary, 0, len(ids))
	for _, id := range ids {
		msg, err := client.GetMessage(id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, gmail.Summarize(msg))
	}
	return summaries, nil
}

func searchAndSummarize(ctx context.Context, sc *server.ServerContext, query string, maxResults int64) (*mcp.CallToolResult, error) {
	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	slog.Debug("searching mailbox",
		slog.String(logging.KeyQuery, query),
		slog.Int64("max_results", maxResults))

	summaries, err := fetchSummaries(client, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	if len(summaries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No emails found matching query: %s", query)), nil
	}

	result := fmt.Sprintf("Found %d email(s):\n%s", len(summaries), gmail.FormatSummaries(summaries))
	return mcp.NewToolResultText(result), nil
}

func handleReadEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	includeAttachments := common.OptionalBool(args, "include_attachments", false)

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.GetMessage(messageID)
	if err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Message %s not found", messageID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read email: %v", err)), nil
	}

	summary := gmail.Summarize(msg)
	body, attachments := gmail.ExtractBody(msg)

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", summary.Subject)
	fmt.Fprintf(&b, "From: %s\n", summary.From)
	fmt.Fprintf(&b, "To: %s\n", summary.To)
	if summary.Cc != "" {
		fmt.Fprintf(&b, "Cc: %s\n", summary.Cc)
	}
	fmt.Fprintf(&b, "Date: %s\n", summary.Date)
	if len(summary.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(summary.Labels, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", body)

	if includeAttachments && len(attachments) > 0 {
		b.WriteString("\nAttachments:\n")
		for i, att := range attachments {
			fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, att.Filename, att.MimeType, att.Size)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleSummarizeRecent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	maxEmails := common.OptionalInt(args, "max_emails", 10)
	days := common.OptionalInt(args, "days", 3)
	query := fmt.Sprintf("newer_than:%dd", days)
	if extra := common.OptionalString(args, "query", ""); extra != "" {
		query += " " + extra
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	summaries, err := fetchSummaries(client, query, maxEmails)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to summarize emails: %v", err)), nil
	}

	if len(summaries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No emails found in the last %d day(s).", days)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary of %d email(s) from the last %d day(s):\n", len(summaries), days)
	for i, s := range summaries {
		snippet := s.Snippet
		if snippet == "" {
			snippet = "(no preview)"
		}
		fmt.Fprintf(&b, "%d. %s: %s (%s)\n   %s\n", i+1, gmail.SenderName(s.From), s.Subject, s.Date, snippet)
	}
	return mcp.NewToolResultText(b.String()), nil
}
