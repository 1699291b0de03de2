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

// RegisterLabelTools registers the label management and read-state tools.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("get_email_labels",
		mcp.WithDescription("List all labels in the mailbox, system and user-created"),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("get_email_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetLabels(ctx, sc)
		}))

	createTool := mcp.NewTool("create_email_label",
		mcp.WithDescription("Create a new user label"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to create"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_email_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("delete_email_label",
		mcp.WithDescription("Delete a user label by name. System labels cannot be deleted."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to delete"),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler("delete_email_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	labelTool := mcp.NewTool("label_email",
		mcp.WithDescription("Apply a label to a message, creating the label if it does not exist"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to label"),
		),
		mcp.WithString("label_name",
			mcp.Required(),
			mcp.Description("Name of the label to apply"),
		),
	)
	s.AddTool(labelTool, common.InstrumentedToolHandler("label_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLabelEmail(ctx, request, sc)
		}))

	removeTool := mcp.NewTool("remove_email_label",
		mcp.WithDescription("Remove a label from a message"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message"),
		),
		mcp.WithString("label_name",
			mcp.Required(),
			mcp.Description("Name of the label to remove"),
		),
	)
	s.AddTool(removeTool, common.InstrumentedToolHandler("remove_email_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveLabel(ctx, request, sc)
		}))

	markReadTool := mcp.NewTool("mark_as_read",
		mcp.WithDescription("Mark a message as read"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to mark as read"),
		),
	)
	s.AddTool(markReadTool, common.InstrumentedToolHandler("mark_as_read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMarkRead(ctx, request, sc, true)
		}))

	markUnreadTool := mcp.NewTool("mark_as_unread",
		mcp.WithDescription("Mark a message as unread"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to mark as unread"),
		),
	)
	s.AddTool(markUnreadTool, common.InstrumentedToolHandler("mark_as_unread", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMarkRead(ctx, request, sc, false)
		}))

	return nil
}

func handleGetLabels(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := client.ListLabels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}
	if len(labels) == 0 {
		return mcp.NewToolResultText("No labels found."), nil
	}

	var system, user []string
	for _, l := range labels {
		line := fmt.Sprintf("%s (ID: %s)", l.Name, l.ID)
		if l.Type == "system" {
			system = append(system, line)
		} else {
			user = append(user, line)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d label(s):\n", len(labels))
	if len(system) > 0 {
		b.WriteString("\nSystem labels:\n")
		for i, line := range system {
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
	}
	if len(user) > 0 {
		b.WriteString("\nUser labels:\n")
		for i, line := range user {
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, err := common.RequiredString(request.GetArguments(), "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	existing, err := client.FindLabel(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to look up label: %v", err)), nil
	}
	if existing != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Label '%s' already exists (ID: %s)", existing.Name, existing.ID)), nil
	}

	label, err := client.CreateLabel(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label '%s' created successfully. Label ID: %s", label.Name, label.ID)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name, err := common.RequiredString(request.GetArguments(), "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.FindLabel(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to look up label: %v", err)), nil
	}
	if label == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Label '%s' not found", name)), nil
	}
	if label.Type == "system" {
		return mcp.NewToolResultError(fmt.Sprintf("Label '%s' is a system label and cannot be deleted", label.Name)), nil
	}

	if err := client.DeleteLabel(label.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label '%s' deleted successfully.", label.Name)), nil
}

func handleLabelEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labelName, err := common.RequiredString(args, "label_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.EnsureLabel(labelName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve label: %v", err)), nil
	}

	if err := client.ModifyMessage(messageID, []string{label.ID}, nil); err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Message %s not found", messageID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to apply label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label '%s' applied to message %s.", label.Name, messageID)), nil
}

func handleRemoveLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labelName, err := common.RequiredString(args, "label_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.FindLabel(labelName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to look up label: %v", err)), nil
	}
	if label == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Label '%s' not found", labelName)), nil
	}

	if err := client.ModifyMessage(messageID, nil, []string{label.ID}); err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Message %s not found", messageID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to remove label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label '%s' removed from message %s.", label.Name, messageID)), nil
}

func handleMarkRead(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, read bool) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredString(request.GetArguments(), "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	var add, remove []string
	if read {
		remove = []string{"UNREAD"}
	} else {
		add = []string{"UNREAD"}
	}

	if err := client.ModifyMessage(messageID, add, remove); err != nil {
		if gmail.IsRemoteNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Message %s not found", messageID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update message: %v", err)), nil
	}

	if read {
		return mcp.NewToolResultText(fmt.Sprintf("Message %s marked as read.", messageID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message %s marked as unread.", messageID)), nil
}
