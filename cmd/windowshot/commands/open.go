package commands

import (
	"fmt"
	"os"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/folder"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the save directory in the file manager",
	Example: `  # Open the working directory
  windowshot open

  # Open another directory
  windowshot open --dir ~/shots`,
	RunE: runOpen,
}

var openDir string

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().StringVarP(&openDir, "dir", "d", "", "directory to open (default is the working directory)")
}

func runOpen(cmd *cobra.Command, args []string) error {
	dir := openDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	if err := folder.NewDesktop().Open(cmd.Context(), dir); err != nil {
		return shoterrors.NewFolderOpenFailed(dir, err)
	}
	return nil
}
