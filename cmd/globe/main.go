// globe - rotating 3D globe for the terminal and the desktop.
//
// Controls:
//
//	Click globe - Pause rotation (resumes after a cooldown)
//	Mouse drag  - Orbit the camera (with --orbit)
//	Scroll, +/- - Zoom
//	X           - Toggle wireframe
//	I           - Toggle hover overlay
//	R           - Reset view
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/globe/pkg/config"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "globe",
	Short: "Rotating 3D globe in your terminal",
	Long: `globe renders a textured, rotating globe through an orthographic camera.
Click the globe to pause it; rotation resumes after a short cooldown.
The default command draws in the terminal; "globe window" opens a window.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTerminal(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// loadConfig resolves defaults, the config file and flags, in that order.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	log.SetLogLevel(level)
	log.Debugf("Config: %+v", cfg)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// fang styles help and error output around the cobra tree.
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}
