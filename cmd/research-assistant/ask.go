// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const askPrompt = "How can I help you research? "

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Run one research query and print the structured result",
	Long: `Ask runs a single research query. The query is taken from the arguments,
or read as one line from stdin after a prompt. The agent's raw final output
is printed first, followed by the parsed record. A response that does not
match the record format is an error; there is no retry.`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger := newLogger(level, cmd.ErrOrStderr())

	ctx := cmd.Context()
	a, err := newAssistant(ctx, cfg, agent.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("initializing assistant: %w", err)
	}

	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprint(cmd.OutOrStdout(), askPrompt)
		query, err = readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	resp, err := a.Research(ctx, query)
	if resp.Raw != "" {
		fmt.Fprintf(out, "%s\n\n", resp.Raw)
	}
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(resp.Record, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printRecord(out, resp.Record)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading query: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printRecord(w io.Writer, rec types.ResearchRecord) {
	fmt.Fprintf(w, "Topic: %s\n\n", rec.Topic)
	fmt.Fprintf(w, "Summary:\n%s\n\n", rec.Summary)
	fmt.Fprintln(w, "Sources:")
	if len(rec.Sources) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, s := range rec.Sources {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
	fmt.Fprintf(w, "\nTools used: %s\n", strings.Join(rec.ToolsUsed, ", "))
}

func init() {
	askCmd.Flags().Bool("json", false, "print the record as JSON")
	askCmd.Flags().BoolP("verbose", "v", false, "log agent and tool activity")

	rootCmd.AddCommand(askCmd)
}
