package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/gmail"
	"github.com/meyannis/mcpgmail/internal/server"
	"github.com/meyannis/mcpgmail/internal/tools/batch"
	"github.com/meyannis/mcpgmail/internal/tools/common"
)

const defaultBatchLimit = 50

// RegisterBatchTools registers the deletion and bulk operation tools.
func RegisterBatchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	deleteTool := mcp.NewTool("delete_email",
		mcp.WithDescription("Move a message to the trash"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to delete"),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler("delete_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEmail(ctx, request, sc)
		}))

	applyLabelTool := mcp.NewTool("batch_apply_label",
		mcp.WithDescription("Apply a label to every message matching a query, creating the label if needed"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query selecting the messages"),
		),
		mcp.WithString("label_name",
			mcp.Required(),
			mcp.Description("Name of the label to apply"),
		),
		mcp.WithNumber("max_messages",
			mcp.Description("Maximum number of messages to process (default: 50)"),
		),
	)
	s.AddTool(applyLabelTool, common.InstrumentedToolHandler("batch_apply_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchApplyLabel(ctx, request, sc)
		}))

	batchDeleteTool := mcp.NewTool("batch_delete_emails",
		mcp.WithDescription("Move every message matching a query to the trash"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query selecting the messages"),
		),
		mcp.WithNumber("max_messages",
			mcp.Description("Maximum number of messages to process (default: 50)"),
		),
	)
	s.AddTool(batchDeleteTool, common.InstrumentedToolHandler("batch_delete_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchDelete(ctx, request, sc)
		}))

	return nil
}

func handleDeleteEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredString(request.GetArguments(), "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.TrashMessage(messageID); err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Message %s not found", messageID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message %s moved to trash.", messageID)), nil
}

func handleBatchApplyLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, err := common.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labelName, err := common.RequiredString(args, "label_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxMessages := common.OptionalInt(args, "max_messages", defaultBatchLimit)

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	ids, err := client.SearchMessages(query, maxMessages)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search messages: %v", err)), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages matched query: %s", query)), nil
	}

	label, err := client.EnsureLabel(labelName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve label: %v", err)), nil
	}

	result := batch.Process(ctx, ids, func(id string) (string, error) {
		if err := client.ModifyMessage(id, []string{label.ID}, nil); err != nil {
			return "", err
		}
		return fmt.Sprintf("label '%s' applied", label.Name), nil
	})
	return mcp.NewToolResultText(result.Format()), nil
}

func handleBatchDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, err := common.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxMessages := common.OptionalInt(args, "max_messages", defaultBatchLimit)

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	ids, err := client.SearchMessages(query, maxMessages)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search messages: %v", err)), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages matched query: %s", query)), nil
	}

	result := batch.Process(ctx, ids, func(id string) (string, error) {
		if err := client.TrashMessage(id); err != nil {
			return "", err
		}
		return "moved to trash", nil
	})
	return mcp.NewToolResultText(result.Format()), nil
}
