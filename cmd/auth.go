package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meyannis/mcpgmail/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Grant mailbox access via the OAuth consent flow",
		Long: `Run the Google OAuth consent flow and store the resulting token.

The command prints a consent URL. Open it in a browser, sign in with the
Google account whose mailbox the server should use, grant access, and
paste the authorization code back here. The token is written to the path
given by GMAIL_TOKEN_PATH (default: token.json) and refreshed
automatically from then on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd)
		},
	}
	return cmd
}

func runAuth(cmd *cobra.Command) error {
	conf, err := google.NewOAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to load OAuth configuration: %w", err)
	}
	session := google.NewSession(conf, google.NewFileTokenStore(google.TokenPath()))

	fmt.Fprintf(cmd.OutOrStdout(), "Open the following URL in your browser and grant Gmail access:\n\n%s\n\n", session.AuthURL())
	fmt.Fprint(cmd.OutOrStdout(), "Enter the authorization code: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	code, err := reader.ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := session.Exchange(cmd.Context(), code); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Authorization successful. Token saved to %s\n", google.TokenPath())
	return nil
}
