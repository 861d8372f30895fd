/*
main.go - Application entry point

PURPOSE:
  Starts the round-up savings HTTP server, or runs one projection offline.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (defaults, YAML file, .env, environment)
  2. Apply command-line flag overrides
  3. Set up the JSON logger
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMANDS:
  roundup-server            Serve HTTP (default)
  roundup-server project    Compute a returns report from a file or scenario

FLAGS:
  --config     YAML config file (optional)
  --port       HTTP server port (overrides config and PORT)
  --log-level  logrus level (overrides config and LOG_LEVEL)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  3. Exit

EXAMPLES:
  # Run on a different port
  ./roundup-server --port=3000

  # Project a request body stored as YAML or JSON
  ./roundup-server project --file request.yaml --mode index

  # Project a built-in demo
  ./roundup-server project --scenario returns-windows

SEE ALSO:
  - config/config.go: Settings and their environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/roundup-engine/api"
	"github.com/warp/roundup-engine/config"
	"github.com/warp/roundup-engine/logging"
	"github.com/warp/roundup-engine/returns"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roundup-server",
		Short:         "Round-up savings and retirement projection API",
		Long:          "Serves the transaction and returns endpoints over HTTP. Use the project subcommand to compute a report without a server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.SetupLogging(cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	root.PersistentFlags().String("config", "", "YAML config file")
	root.Flags().Int("port", 0, "HTTP server port")
	root.Flags().String("log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newProjectCmd())
	return root
}

// loadConfig resolves the config and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, cfg.Validate()
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	handler := api.NewHandler(logger, cfg.MaxBodyBytes)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   cfg.Addr(),
			"prefix": cfg.APIPrefix,
		}).Info("Server.Start")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Server.Shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server.Stopped")
	return nil
}

// =============================================================================
// PROJECT COMMAND
// =============================================================================

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Compute a returns report offline",
		Long:  "Reads a returns request body (YAML or JSON) or a built-in scenario and prints the report the returns endpoint would send.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			scenario, _ := cmd.Flags().GetString("scenario")
			modeStr, _ := cmd.Flags().GetString("mode")

			mode, err := returns.ParseMode(modeStr)
			if err != nil {
				return err
			}

			req, err := loadRequest(file, scenario)
			if err != nil {
				return err
			}
			input, err := req.ToInput()
			if err != nil {
				return err
			}
			report, err := returns.Compute(input, mode)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.ToReturnsResponse(report))
		},
	}

	cmd.Flags().StringP("file", "f", "", "Request body file (YAML or JSON)")
	cmd.Flags().StringP("scenario", "s", "", "Built-in scenario id (see GET /scenarios)")
	cmd.Flags().StringP("mode", "m", string(returns.ModeNPS), "Projection mode (nps, index)")
	return cmd
}

// loadRequest reads exactly one of file or scenario. JSON is valid YAML, so
// one decoder handles both file formats.
func loadRequest(file, scenario string) (api.ReturnsRequest, error) {
	switch {
	case file != "" && scenario != "":
		return api.ReturnsRequest{}, errors.New("use either --file or --scenario, not both")
	case scenario != "":
		return api.ScenarioReturnsRequest(scenario)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return api.ReturnsRequest{}, fmt.Errorf("read request: %w", err)
		}
		var req api.ReturnsRequest
		if err := yaml.Unmarshal(data, &req); err != nil {
			return api.ReturnsRequest{}, fmt.Errorf("parse request %s: %w", file, err)
		}
		return req, nil
	default:
		return api.ReturnsRequest{}, errors.New("one of --file or --scenario is required")
	}
}
