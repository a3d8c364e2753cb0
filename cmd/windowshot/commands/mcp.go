package commands

import (
	"os"

	"github.com/bryanchriswhite/WindowShot/internal/api"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/bryanchriswhite/WindowShot/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve capture tools over MCP (stdio)",
	Long: `Run an MCP server on stdin/stdout exposing the tools list_windows,
capture_window, toggle_auto and status. Logs go to stderr.`,
	RunE: runMCP,
}

var mcpDir string

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVarP(&mcpDir, "dir", "d", "", "save directory (default is the working directory)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol
	logger.SetOutput(os.Stderr)

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(configMgr.Get(), mcpDir, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcp.Run(a.ctrl, api.Version)
}
