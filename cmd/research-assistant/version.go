package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

func currentBuild() buildInfo {
	b := buildInfo{Version: version, GoVersion: runtime.Version()}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				b.Revision = s.Value
			case "vcs.modified":
				b.Modified = s.Value == "true"
			}
		}
	}
	return b
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of research-assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := currentBuild()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.Marshal(b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		line := "research-assistant " + b.Version
		if b.Revision != "" {
			rev := b.Revision[:min(len(b.Revision), 12)]
			if b.Modified {
				rev += "-dirty"
			}
			line += " (" + rev + ")"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print build details as JSON")

	rootCmd.AddCommand(versionCmd)
}
