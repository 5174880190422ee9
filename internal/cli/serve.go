package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingrea/claimdesk/internal/api"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve claims and dashboard figures over HTTP",
	Long: `Start the read-only JSON API.

Endpoints:
  GET /health
  GET /claims[?status=...&type=...]
  GET /claims/{id}
  GET /dashboards/{customer|adjuster|admin}

Requests are rate limited per client address.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "bind host (default from config)")
	serveCmd.Flags().Int("port", 0, "bind port (default from config)")
	_ = viper.BindPFlag("api.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("api.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(api.SettingsFromConfig(rt.cfg), rt.repo,
		api.WithLogger(rt.logger.Component("api")),
		api.WithVersion(Version),
	)
	if err := srv.Start(ctx); err != nil {
		if errors.Is(err, api.ErrServerDisabled) {
			return fmt.Errorf("api is disabled in %s", rt.cfg.ProjectConfigPath())
		}
		return err
	}
	rt.logbook.Info("API", "API listening on %s", srv.BaseURL())
	fmt.Fprintf(cmd.OutOrStdout(), "claimdesk API listening on %s (ctrl+c to stop)\n", srv.BaseURL())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	rt.logbook.Info("API", "API stopped")
	return nil
}
