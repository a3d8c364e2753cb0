package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/WindowShot/internal/session"
	"github.com/spf13/cobra"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Capture a window repeatedly",
	Long: `Capture the window listed under the given title immediately and then once
per interval until interrupted. A failed capture is reported and the loop
carries on.`,
	Example: `  # Capture every 10 seconds (default)
  windowshot auto --window "Terminal"

  # Capture every 30 seconds into ~/shots
  windowshot auto --window "Terminal" --interval 30s --dir ~/shots`,
	RunE: runAuto,
}

var (
	autoWindow   string
	autoDir      string
	autoInterval time.Duration
)

func init() {
	rootCmd.AddCommand(autoCmd)

	autoCmd.Flags().StringVarP(&autoWindow, "window", "w", "", "window title as shown by 'windowshot list'")
	autoCmd.Flags().StringVarP(&autoDir, "dir", "d", "", "save directory (default is the working directory)")
	autoCmd.Flags().DurationVarP(&autoInterval, "interval", "i", 0, "time between captures (default is capture.interval)")
	autoCmd.MarkFlagRequired("window")
}

func runAuto(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	if autoInterval != 0 && autoInterval < time.Second {
		return fmt.Errorf("invalid interval: %s (minimum 1s)", autoInterval)
	}

	a, err := newApp(configMgr.Get(), autoDir, autoInterval)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ctrl.Select(autoWindow); err != nil {
		return fmt.Errorf("window %q is not listed", autoWindow)
	}

	updates := a.ctrl.Subscribe()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Printf("Capturing %q every %s into %s (Ctrl+C to stop)\n", autoWindow, a.ctrl.Interval(), a.ctrl.SaveDir())
	a.ctrl.ToggleAuto()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			printStatus(st)
		case <-sigChan:
			if a.ctrl.AutoCapturing() {
				a.ctrl.ToggleAuto()
			}
			return nil
		}
	}
}

func printStatus(st session.Status) {
	marker := "•"
	switch st.Level {
	case session.LevelSuccess:
		marker = "✓"
	case session.LevelError:
		marker = "✗"
	}
	fmt.Printf("%s %s %s\n", st.Time.Format("15:04:05"), marker, st.Text)
}
