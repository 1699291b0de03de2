package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/gmail"
	"github.com/meyannis/mcpgmail/internal/server"
	"github.com/meyannis/mcpgmail/internal/tools/batch"
	"github.com/meyannis/mcpgmail/internal/tools/common"
)

// RegisterSendTools registers the email sending tools.
func RegisterSendTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendTool := mcp.NewTool("send_email",
		mcp.WithDescription("Send an email from the authenticated Gmail account"),
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
			mcp.Description("Optional HTML body; sent as multipart/alternative with the plain text body"),
		),
		mcp.WithString("importance",
			mcp.Description("Message importance: high, normal, or low"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("send_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	attachmentTool := mcp.NewTool("send_email_with_attachment",
		mcp.WithDescription("Send an email with a single file attachment"),
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
		mcp.WithString("attachment_path",
			mcp.Required(),
			mcp.Description("Filesystem path of the file to attach"),
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
	s.AddTool(attachmentTool, common.InstrumentedToolHandler("send_email_with_attachment", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmailWithAttachments(ctx, request, sc, false)
		}))

	multiTool := mcp.NewTool("send_email_with_multiple_attachments",
		mcp.WithDescription("Send an email with multiple file attachments"),
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
		mcp.WithString("attachment_paths",
			mcp.Required(),
			mcp.Description("Filesystem path (string) or array of paths of files to attach"),
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
	s.AddTool(multiTool, common.InstrumentedToolHandler("send_email_with_multiple_attachments", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmailWithAttachments(ctx, request, sc, true)
		}))

	return nil
}

// messageFromArgs builds an EmailMessage from the common sending arguments.
// Returns a tool error result on validation failure.
func messageFromArgs(args map[string]interface{}) (*gmail.EmailMessage, *mcp.CallToolResult) {
	to, err := common.RequiredString(args, "to")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	subject, err := common.RequiredString(args, "subject")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	body, err := common.RequiredString(args, "body")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	return &gmail.EmailMessage{
		To:       to,
		Subject:  subject,
		Body:     body,
		Cc:       common.OptionalString(args, "cc", ""),
		Bcc:      common.OptionalString(args, "bcc", ""),
		HTMLBody: common.OptionalString(args, "html_body", ""),
	}, nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	msg, errResult := messageFromArgs(args)
	if errResult != nil {
		return errResult, nil
	}

	importance := strings.ToLower(common.OptionalString(args, "importance", "normal"))
	switch importance {
	case "high", "normal", "low":
	default:
		return mcp.NewToolResultError("importance must be one of: high, normal, low"), nil
	}
	msg.Importance = importance

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	raw, err := gmail.BuildMessage(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build message: %v", err)), nil
	}

	id, err := client.SendRaw(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully. Message ID: %s", id)), nil
}

func handleSendEmailWithAttachments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, multiple bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	msg, errResult := messageFromArgs(args)
	if errResult != nil {
		return errResult, nil
	}

	var paths []string
	if multiple {
		var err error
		paths, err = batch.ParseStringOrArray(args["attachment_paths"], "attachment_paths")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		path, err := common.RequiredString(args, "attachment_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		paths = []string{path}
	}

	for _, path := range paths {
		att, err := gmail.LoadAttachment(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	raw, err := gmail.BuildMessage(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build message: %v", err)), nil
	}

	id, err := client.SendRaw(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	names := make([]string, len(msg.Attachments))
	for i, att := range msg.Attachments {
		names[i] = att.Filename
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully with %d attachment(s) (%s). Message ID: %s",
		len(names), strings.Join(names, ", "), id)), nil
}
