package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/gmail"
	"github.com/meyannis/mcpgmail/internal/server"
	"github.com/meyannis/mcpgmail/internal/tools/common"
)

// RegisterDraftTools registers the draft management tools.
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool("create_email_draft",
		mcp.WithDescription("Create a draft email without sending it"),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain text email body"),
		),
		mcp.WithString("cc",
			mcp.Description("CC recipients, comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC recipients, comma-separated"),
		),
		mcp.WithString("html_body",
			mcp.Description("Optional HTML body"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_email_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDraft(ctx, request, sc)
		}))

	updateTool := mcp.NewTool("update_email_draft",
		mcp.WithDescription("Update an existing draft. Unspecified fields keep the draft's current values."),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("ID of the draft to update"),
		),
		mcp.WithString("to",
			mcp.Description("New recipient email address(es), comma-separated"),
		),
		mcp.WithString("subject",
			mcp.Description("New subject line"),
		),
		mcp.WithString("body",
			mcp.Description("New plain text body"),
		),
		mcp.WithString("cc",
			mcp.Description("New CC recipients, comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("New BCC recipients, comma-separated"),
		),
		mcp.WithString("html_body",
			mcp.Description("New HTML body"),
		),
	)
	s.AddTool(updateTool, common.InstrumentedToolHandler("update_email_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateDraft(ctx, request, sc)
		}))

	sendTool := mcp.NewTool("send_draft",
		mcp.WithDescription("Send an existing draft by its ID"),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("ID of the draft to send"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("send_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendDraft(ctx, request, sc)
		}))

	listTool := mcp.NewTool("list_email_drafts",
		mcp.WithDescription("List drafts with subject, recipient and date"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of drafts to return (default: 10)"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_email_drafts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDrafts(ctx, request, sc)
		}))

	return nil
}

func handleCreateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	msg, errResult := messageFromArgs(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	raw, err := gmail.BuildMessage(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build message: %v", err)), nil
	}

	id, err := client.CreateDraft(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft created successfully. Draft ID: %s", id)), nil
}

func handleUpdateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	draftID, err := common.RequiredString(args, "draft_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	draft, err := client.GetDraft(draftID)
	if err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Draft %s not found", draftID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load draft: %v", err)), nil
	}

	// Merge semantics: start from the existing draft's headers and both body
	// renditions, override only what the caller supplied.
	existingPlain, existingHTML, _ := gmail.ExtractBodies(draft.Message)
	msg := &gmail.EmailMessage{
		To:       gmail.HeaderValue(draft.Message, "To"),
		Cc:       gmail.HeaderValue(draft.Message, "Cc"),
		Bcc:      gmail.HeaderValue(draft.Message, "Bcc"),
		Subject:  gmail.HeaderValue(draft.Message, "Subject"),
		Body:     existingPlain,
		HTMLBody: existingHTML,
	}
	msg.To = common.OptionalString(args, "to", msg.To)
	msg.Cc = common.OptionalString(args, "cc", msg.Cc)
	msg.Bcc = common.OptionalString(args, "bcc", msg.Bcc)
	msg.Subject = common.OptionalString(args, "subject", msg.Subject)
	msg.Body = common.OptionalString(args, "body", msg.Body)
	msg.HTMLBody = common.OptionalString(args, "html_body", msg.HTMLBody)

	raw, err := gmail.BuildMessage(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build message: %v", err)), nil
	}

	id, err := client.UpdateDraft(draftID, raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft updated successfully. Draft ID: %s", id)), nil
}

func handleSendDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	draftID, err := common.RequiredString(request.GetArguments(), "draft_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	id, err := client.SendDraft(draftID)
	if err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Draft %s not found", draftID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft sent successfully. Message ID: %s", id)), nil
}

func handleListDrafts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	maxResults := common.OptionalInt(request.GetArguments(), "max_results", 10)

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	drafts, err := client.ListDrafts(maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list drafts: %v", err)), nil
	}

	if len(drafts) == 0 {
		return mcp.NewToolResultText("No drafts found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d draft(s):\n", len(drafts))
	for i, d := range drafts {
		fmt.Fprintf(&b, "%d. Draft ID: %s\n", i+1, d.ID)
		fmt.Fprintf(&b, "   Subject: %s\n", d.Subject)
		fmt.Fprintf(&b, "   To: %s\n", d.To)
		fmt.Fprintf(&b, "   Date: %s\n", d.Date)
	}
	return mcp.NewToolResultText(b.String()), nil
}
