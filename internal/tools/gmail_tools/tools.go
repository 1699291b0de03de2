package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/gmail"
	"github.com/meyannis/mcpgmail/internal/google"
	"github.com/meyannis/mcpgmail/internal/server"
	"github.com/meyannis/mcpgmail/internal/tools/common"
)

// RegisterGmailTools registers the full Gmail tool catalog with the MCP
// server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterSendTools(s, sc); err != nil {
		return fmt.Errorf("failed to register send tools: %w", err)
	}
	if err := RegisterDraftTools(s, sc); err != nil {
		return fmt.Errorf("failed to register draft tools: %w", err)
	}
	if err := RegisterSearchTools(s, sc); err != nil {
		return fmt.Errorf("failed to register search tools: %w", err)
	}
	if err := RegisterLabelTools(s, sc); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}
	if err := RegisterBatchTools(s, sc); err != nil {
		return fmt.Errorf("failed to register batch tools: %w", err)
	}

	profileTool := mcp.NewTool("get_email_profile",
		mcp.WithDescription("Get the Gmail profile of the authenticated account: email address, message and thread totals"),
	)
	s.AddTool(profileTool, common.InstrumentedToolHandler("get_email_profile", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProfile(ctx, sc)
		}))

	return nil
}

// clientOrError returns the Gmail client, or a tool error result carrying
// re-authentication guidance when no valid credential exists.
func clientOrError(ctx context.Context, sc *server.ServerContext) (*gmail.Client, *mcp.CallToolResult) {
	client, err := sc.GmailClient(ctx)
	if err == nil {
		return client, nil
	}

	if google.IsAuthError(err) {
		msg := fmt.Sprintf(`Gmail authorization required: %v

To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant Gmail access
3. Run the auth command with the authorization code shown

Once authorized, the token is refreshed automatically.`, err, sc.Session().AuthURL())
		return nil, mcp.NewToolResultError(msg)
	}

	return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create Gmail client: %v", err))
}

func handleGetProfile(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := clientOrError(ctx, sc)
	if errResult != nil {
		return errResult, nil
	}

	profile, err := client.GetProfile()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get profile: %v", err)), nil
	}

	// Remember the account for metric and log labels.
	sc.SetAccount(profile.EmailAddress)

	result := fmt.Sprintf("Gmail Profile:\nEmail Address: %s\nTotal Messages: %d\nTotal Threads: %d\nHistory ID: %d",
		profile.EmailAddress, profile.MessagesTotal, profile.ThreadsTotal, profile.HistoryID)
	return mcp.NewToolResultText(result), nil
}
