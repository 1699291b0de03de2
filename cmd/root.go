package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcpgmail application
var rootCmd = &cobra.Command{
	Use:   "mcpgmail",
	Short: "MCP server exposing Gmail tools for AI assistants",
	Long: `mcpgmail is a Model Context Protocol (MCP) server that gives AI
assistants access to a Gmail mailbox: sending and drafting mail, searching
and reading messages, managing labels and read state, and bulk operations.

It can run over:
  - stdio: Standard input/output (default)
  - SSE: Server-Sent Events over HTTP for remote clients`,
	SilenceUsage: true,
}

// envFile is loaded before any command runs, so both flags and the
// google package see the variables it sets.
var envFile string

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpgmail version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file to load before running")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
