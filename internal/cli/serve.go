package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/quartermaster/internal/config"
	"github.com/ogulcanaydogan/quartermaster/internal/logging"
	"github.com/ogulcanaydogan/quartermaster/internal/server"
	"github.com/ogulcanaydogan/quartermaster/pkg/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run history and an HTTP run trigger",
	Long: `Start an HTTP server with GET /healthz, GET /api/v1/runs and
POST /api/v1/run. Point an external scheduler at the run endpoint.

The run endpoint writes to the sheets. Set server.token (QM_SERVER_TOKEN)
to require a bearer token; it is mandatory when listening beyond loopback.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default: server.listen)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	listen, _ := cmd.Flags().GetString("listen")
	if listen == "" {
		listen = a.cfg.Server.Listen
	}
	if a.cfg.Server.Token == "" && !server.IsLoopback(listen) {
		return fmt.Errorf("%w: server.token is required to listen on %s", config.ErrConfiguration, listen)
	}
	readTimeout, err := config.Duration(a.cfg.Server.ReadTimeout)
	if err != nil {
		return fmt.Errorf("server.read_timeout: %w", err)
	}
	writeTimeout, err := config.Duration(a.cfg.Server.WriteTimeout)
	if err != nil {
		return fmt.Errorf("server.write_timeout: %w", err)
	}

	runner := func(ctx context.Context, req server.RunRequest) (*model.RunSummary, error) {
		armies, err := resolveArmies(a.cfg, a.registry, req.Armies)
		if err != nil {
			return nil, err
		}
		t, err := a.newTracker(req.DryRun, false, logging.FromContext(ctx))
		if err != nil {
			return nil, err
		}
		_, summary, err := t.Run(ctx, armies)
		return summary, err
	}

	apiServer := server.NewServer(runner, a.store, a.logger).WithToken(a.cfg.Server.Token)
	srv := &http.Server{
		Addr:         listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("quartermaster server started", "listen", listen, "armies", len(a.cfg.Armies))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-quit:
		a.logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
