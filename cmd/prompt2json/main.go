// Command prompt2json is the operator CLI: it runs conversions against the
// configured AI provider, prints the plan catalog and mints development
// bearer tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/prompt2json/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prompt2json",
		Short: "Turn natural-language prompts into structured JSON",
		Long: `prompt2json converts free-form prompts into a structured JSON document
using the configured AI provider (AI_PROVIDER, ZAI_API_KEY, GEMINI_API_KEY).

The same environment variables as the server apply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newConvertCmd(),
		newPlansCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
