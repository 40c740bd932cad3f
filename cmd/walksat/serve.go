package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"walksat/internal/config"
	"walksat/internal/httpapi"
	"walksat/internal/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Args:  cobra.NoArgs,
	Short: "Serve the solver over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, else :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	report.InitLogger(cfg.Logging)

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	metrics := report.NewMetrics()
	srv := httpapi.NewServer(cfg, metrics)

	log.Info().Str("addr", addr).Msg("walksat serving")
	if err := http.ListenAndServe(addr, srv); err != nil {
		return fmt.Errorf("walksat serve: %w", err)
	}
	return nil
}
