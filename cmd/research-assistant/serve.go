// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/dashboard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive research dashboard",
	Long: `Serve builds the assistant once and starts the dashboard. If the assistant
cannot be built (for example the API key is missing) the dashboard still
starts and shows the error; no research runs until it is restarted with a
working configuration. Stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var researcher dashboard.Researcher
	a, initErr := newAssistant(ctx, cfg, agent.WithLogger(logger))
	if initErr != nil {
		logger.Error("assistant unavailable", "error", initErr)
	} else {
		researcher = a
	}

	srv := dashboard.New(researcher, initErr, cfg.Dashboard, dashboard.WithLogger(logger))
	fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard at http://%s\n", displayAddr(cfg.Dashboard.Addr))
	return srv.ListenAndServe(ctx)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8501)")
	_ = viper.BindPFlag("dashboard.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
