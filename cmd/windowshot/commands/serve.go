package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/WindowShot/internal/api"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WindowShot web UI",
	Long: `Start the WindowShot HTTP server.

The server provides the capture UI, a REST API and a WebSocket status stream.
Open it in a browser; the browser tab is titled WindowShot and is therefore
never offered as a capture target.`,
	Example: `  # Start server on default port (8080)
  windowshot serve

  # Start server on custom port
  windowshot serve --port 9090

  # Save captures to another directory
  windowshot serve --dir ~/shots

  # Start with debug logging
  windowshot serve --log-level debug`,
	RunE: runServe,
}

var serveDir string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveDir, "dir", "d", "", "initial save directory (default is the working directory)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	a, err := newApp(cfg, serveDir, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.NewServer(a.ctrl)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cfg.ServerPort)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Println()
	fmt.Println("✅ WindowShot is running!")
	fmt.Printf("   - Web UI: http://%s:%d\n", api.ListenHost, cfg.ServerPort)
	fmt.Printf("   - API: http://%s:%d/api\n", api.ListenHost, cfg.ServerPort)
	fmt.Println("   - Press Ctrl+C to stop")
	fmt.Println()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigChan:
	}

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
