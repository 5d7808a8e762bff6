package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/prompt2json/internal/config"
	"github.com/sakif/prompt2json/internal/convert"
	"github.com/sakif/prompt2json/internal/llm"
)

func newConvertCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "convert <prompt>",
		Short: "Convert a prompt to structured JSON",
		Long: `Convert runs one conversion and prints the JSON document to stdout.

When the AI call fails the fallback document is printed instead and the
warning goes to stderr, so stdout is always valid JSON. Pass "-" to read
the prompt from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if prompt == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading prompt: %w", err)
				}
				prompt = string(b)
			}
			return runConvert(cmd, prompt, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall time limit")
	return cmd
}

func runConvert(cmd *cobra.Command, prompt string, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	completer, err := llm.New(ctx, cfg.LLM())
	if err != nil {
		return fmt.Errorf("creating AI client: %w", err)
	}

	res, err := convert.NewConverter(completer, logger).Convert(ctx, prompt)
	if err != nil {
		return err
	}

	if res.Fallback() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", res.Warning)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.JSON)
	return nil
}
