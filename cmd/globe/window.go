package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fortio.org/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/taigrr/globe/pkg/config"
	"github.com/taigrr/globe/pkg/scene"
)

var windowSize struct {
	width, height int
}

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the globe in a desktop window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWindow(cmd.Context(), cfg)
	},
}

func init() {
	windowCmd.Flags().IntVar(&windowSize.width, "width", 800, "initial window width")
	windowCmd.Flags().IntVar(&windowSize.height, "height", 600, "initial window height")
	rootCmd.AddCommand(windowCmd)
}

// windowGame adapts a Session to ebiten. Layout is the resize notification;
// Update runs one frame per tick.
type windowGame struct {
	ctx     context.Context
	session *scene.Session
	screen  *ebiten.Image
	pix     []byte

	width, height int // Framebuffer pixels
	ratio         float64
	cursorX       int
	cursorY       int
}

func runWindow(ctx context.Context, c config.Config) error {
	// The device scale is only known once the game runs; Layout corrects it.
	const ratio = 1.0
	width, height := windowSize.width, windowSize.height

	session, _, err := newSession(ctx, c, width, height, ratio)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(windowSize.width, windowSize.height)
	ebiten.SetWindowTitle("globe")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(c.FPS)

	g := &windowGame{ctx: ctx, session: session, width: width, height: height, ratio: ratio, cursorX: -1, cursorY: -1}
	log.Infof("Opening %dx%d window", windowSize.width, windowSize.height)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (g *windowGame) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	keys := []struct {
		key ebiten.Key
		cmd scene.Key
	}{
		{ebiten.KeyX, scene.KeyWireframe},
		{ebiten.KeyI, scene.KeyOverlay},
		{ebiten.KeyR, scene.KeyReset},
		{ebiten.KeyEqual, scene.KeyZoomIn},
		{ebiten.KeyKPAdd, scene.KeyZoomIn},
		{ebiten.KeyMinus, scene.KeyZoomOut},
		{ebiten.KeyKPSubtract, scene.KeyZoomOut},
	}
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.session.Dispatch(scene.KeyEvent{Key: k.cmd})
		}
	}

	// Layout returns the framebuffer size, so the cursor is in framebuffer pixels.
	x, y := ebiten.CursorPosition()
	if x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		g.session.Dispatch(scene.PointerMoveEvent{X: float64(x), Y: float64(y)})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.session.Dispatch(scene.PointerDownEvent{X: float64(x), Y: float64(y)})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.session.Dispatch(scene.PointerUpEvent{X: float64(x), Y: float64(y)})
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.session.Dispatch(scene.WheelEvent{Delta: wy})
	}

	g.session.Frame(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	fb := g.session.Framebuffer()
	if g.screen == nil || g.screen.Bounds().Dx() != fb.Width || g.screen.Bounds().Dy() != fb.Height {
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(fb.Width, fb.Height)
		g.pix = make([]byte, 4*fb.Width*fb.Height)
	}
	for i, c := range fb.Pixels {
		g.pix[i*4], g.pix[i*4+1], g.pix[i*4+2], g.pix[i*4+3] = c.R, c.G, c.B, c.A
	}
	g.screen.WritePixels(g.pix)
	screen.DrawImage(g.screen, nil)

	if o := g.session.Overlay(); o.Visible() {
		p := g.session.Pointer()
		ebitenutil.DebugPrintAt(screen, o.Text(), int(p.X)+12, int(p.Y))
	}
	m := g.session.Machine()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%.0f fps  %v  x:wire i:overlay r:reset esc:quit", ebiten.ActualFPS(), m.State()))
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	ratio := 1.0
	if m := ebiten.Monitor(); m != nil {
		ratio = m.DeviceScaleFactor()
	}
	w := max(int(float64(outsideWidth)*ratio), 1)
	h := max(int(float64(outsideHeight)*ratio), 1)
	if w != g.width || h != g.height || ratio != g.ratio {
		g.width, g.height, g.ratio = w, h, ratio
		g.session.Dispatch(scene.ResizeEvent{Width: w, Height: h, PixelRatio: g.ratio})
	}
	return w, h
}
