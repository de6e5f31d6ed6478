package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/agriassist-cli/internal/advisory"
	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/KaramelBytes/agriassist-cli/internal/metrics"
	"github.com/KaramelBytes/agriassist-cli/internal/schedule"
	"github.com/KaramelBytes/agriassist-cli/internal/server"
	"github.com/KaramelBytes/agriassist-cli/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveSchedule string
	serveEnvFile  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the farm profile and advisory HTTP backend",
	Long: `Open the farm store and serve the HTTP API:

  GET  /health
  GET  /metrics
  GET  /api/farm-profiles
  POST /api/farm-profiles
  GET  /api/farm-profiles/:id
  GET  /api/farm-profiles/:id/advisories[?type=]
  POST /api/farm-profiles/:id/advisories
  POST /api/farm-profiles/:id/optimize

With a clean schedule (cron expression) every dataset is re-cleaned on that
schedule while the server runs.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Environment from a .env file feeds AGRIASSIST_* overrides.
		if err := godotenv.Load(serveEnvFile); err != nil {
			if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load env file: %w", err)
			}
			return nil
		}
		cfg = nil
		loadConfig()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		addr := c.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		spec := c.CleanSchedule
		if cmd.Flags().Changed("schedule") {
			spec = serveSchedule
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		st, err := store.Open(c.DatabaseDriver, c.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		m := metrics.New()
		engine := advisory.NewEngine(st, logger, advisory.WithCounter(m))
		srv := server.New(st, engine, m, logger, addr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if spec != "" {
			cleaner := dataset.NewCleaner(c.DatasetConfig(), logger, dataset.WithRecorder(m))
			sched := schedule.New(logger)
			if err := sched.Add(spec, "clean_all", func(ctx context.Context) { cleaner.CleanAll(ctx, true) }); err != nil {
				return err
			}
			done := make(chan struct{})
			go func() {
				sched.Run(ctx)
				close(done)
			}()
			defer func() { <-done }()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleaning scheduled: %s\n", spec)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on http://%s (Ctrl+C to stop)\n", addr)
		if err := srv.Run(ctx); err != nil {
			stop()
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides http_addr)")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "cron expression for re-cleaning all datasets (overrides clean_schedule; empty disables)")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "dotenv file loaded before reading configuration")
}
