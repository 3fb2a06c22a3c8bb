package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	authToken string
	apiURL    string = "http://localhost:8788"
	output    string = "text" // "text" or "json"
)

// Commands that hit public endpoints and work without a token.
var publicCommands = map[string]bool{
	"consume": true,
	"sweep":   true,
	"stats":   true,
	"help":    true,
}

var rootCmd = &cobra.Command{
	Use:   "sharespace",
	Short: "Share Space CLI - Manage your Share Space account and secure links",
	Long: `Share Space CLI provides command-line access to your Share Space account.
Create and redeem one-time secure links, and manage your profile.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if authToken == "" {
			authToken = os.Getenv("SHARESPACE_TOKEN")
		}
		if authToken == "" && cmd.Parent() != nil && !publicCommands[cmd.Name()] {
			fmt.Fprintf(os.Stderr, "Error: SHARESPACE_TOKEN environment variable not set\n")
			fmt.Fprintf(os.Stderr, "Please set your auth token: export SHARESPACE_TOKEN=<your-token>\n")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Authentication token (defaults to SHARESPACE_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	// Add command groups
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
