package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a window once",
	Long: `Raise the window listed under the given title, grab its on-screen
rectangle and save it as the next free testN.png in the save directory.`,
	Example: `  # Capture into the current directory
  windowshot capture --window "Terminal"

  # Capture into another directory
  windowshot capture --window "Terminal" --dir ~/shots`,
	RunE: runCapture,
}

var (
	captureWindow string
	captureDir    string
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureWindow, "window", "w", "", "window title as shown by 'windowshot list'")
	captureCmd.Flags().StringVarP(&captureDir, "dir", "d", "", "save directory (default is the working directory)")
	captureCmd.MarkFlagRequired("window")
}

func runCapture(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(configMgr.Get(), captureDir, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.ctrl.CaptureOnce(cmd.Context(), captureWindow)
	if err != nil {
		return errors.New(a.ctrl.Status().Text)
	}

	fmt.Printf("Saved: %s\n", saved.Path)
	return nil
}
