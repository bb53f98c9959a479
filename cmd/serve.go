package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/importer-intel/internal/monitoring"
	"github.com/sells-group/importer-intel/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		if cfg.Monitoring.Enabled {
			checker := monitoring.NewChecker(
				monitoring.NewCollector(env.Router),
				monitoring.NewAlerter(cfg.Monitoring),
				cfg.Monitoring,
			)
			go checker.Run(ctx)
		}

		srv := server.New(env.Session(), cfg.Server.AllowedOrigins, server.WithUsage(env.Router))
		return srv.ListenAndServe(ctx, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
