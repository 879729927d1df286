package main

import (
	"context"
	"fmt"
	"time"

	"fortio.org/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/globe/pkg/scene"
)

var snapshotOpts struct {
	out     string
	width   int
	height  int
	ratio   float64
	frames  int
	wait    bool
	timeout time.Duration
	pointer []float64
	press   bool
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render frames headless and save the last one as PNG",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshot(cmd.Context())
	},
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVarP(&snapshotOpts.out, "out", "o", "globe.png", "output PNG path")
	f.IntVar(&snapshotOpts.width, "width", 800, "image width in pixels")
	f.IntVar(&snapshotOpts.height, "height", 600, "image height in pixels")
	f.Float64Var(&snapshotOpts.ratio, "ratio", 1, "pixels per logical unit (0 = fit)")
	f.IntVarP(&snapshotOpts.frames, "frames", "n", 1, "frames to run before saving")
	f.BoolVar(&snapshotOpts.wait, "wait", true, "wait for the texture before rendering")
	f.DurationVar(&snapshotOpts.timeout, "timeout", 30*time.Second, "texture wait limit")
	f.Float64SliceVar(&snapshotOpts.pointer, "pointer", nil, "pointer position x,y in pixels")
	f.BoolVar(&snapshotOpts.press, "press", false, "press the pointer before the first frame")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(ctx context.Context) error {
	o := snapshotOpts
	if len(o.pointer) != 0 && len(o.pointer) != 2 {
		return fmt.Errorf("--pointer wants x,y, got %v", o.pointer)
	}

	session, ready, err := newSession(ctx, cfg, o.width, o.height, o.ratio)
	if err != nil {
		return err
	}

	if o.wait {
		waitCtx, cancel := context.WithTimeout(ctx, o.timeout)
		select {
		case <-ready:
		case <-waitCtx.Done():
			log.Warnf("Texture not ready after %v, rendering placeholder", o.timeout)
		}
		cancel()
	}

	if len(o.pointer) == 2 {
		session.Dispatch(scene.PointerMoveEvent{X: o.pointer[0], Y: o.pointer[1]})
		if o.press {
			session.Dispatch(scene.PointerDownEvent{X: o.pointer[0], Y: o.pointer[1]})
		}
	}

	dt := time.Second / time.Duration(cfg.FPS)
	for range max(o.frames, 1) {
		session.Frame(dt)
	}

	if err := session.Framebuffer().SavePNG(o.out); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Infof("Wrote %s after %d frames (rotation %.3f rad, state %v)",
		o.out, session.Frames(), session.Globe().Rotation(), session.Machine().State())
	return nil
}
