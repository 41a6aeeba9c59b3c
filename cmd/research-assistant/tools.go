// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools available to the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := tools.Default(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			type info struct {
				Name         string `json:"name"`
				Description  string `json:"description"`
				ReturnDirect bool   `json:"return_direct"`
			}
			var infos []info
			for _, t := range registry.All() {
				infos = append(infos, info{t.Name(), t.Description(), t.ReturnDirect()})
			}
			data, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		for _, t := range registry.All() {
			fmt.Fprintf(out, "%s\n    %s\n", t.Name(), t.Description())
		}
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save [text]",
	Short: "Append text to the research log",
	Long: `Save appends a timestamped block to the research log (tools.research_log
under tools.output_dir). The text comes from the arguments or, when none are
given, from stdin. Existing content is never rewritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		text := strings.Join(args, " ")
		if text == "" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = strings.TrimRight(string(data), "\n")
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to save")
		}

		path := tools.ResearchLogPath(cfg.Tools)
		if err := tools.AppendRecord(path, text, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Data successfully saved to %s\n", path)
		return nil
	},
}

func init() {
	toolsCmd.Flags().Bool("json", false, "output tools as JSON")

	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(saveCmd)
}
