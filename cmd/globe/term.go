//go:build !js

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"charm.land/lipgloss/v2"
	"fortio.org/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/globe/pkg/config"
	"github.com/taigrr/globe/pkg/interaction"
	"github.com/taigrr/globe/pkg/render"
	"github.com/taigrr/globe/pkg/scene"
)

var (
	overlayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1C488C")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0")).
			Background(lipgloss.Color("#101010"))
	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F")).
			Background(lipgloss.Color("#101010"))
)

func runTerminal(ctx context.Context, c config.Config) error {
	restoreLog, err := redirectLog(c.LogFile)
	if err != nil {
		return err
	}
	defer restoreLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	session, _, err := newSession(ctx, c, fbWidth, fbHeight, c.PixelRatio)
	if err != nil {
		return err
	}

	// The input goroutine only forwards; everything else runs between frames.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	hud := newStatusLine()
	targetDuration := time.Second / time.Duration(c.FPS)
	lastFrame := time.Now()

	for {
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					termRenderer = render.NewTerminalRenderer(term, width, height)
					fbWidth, fbHeight = termRenderer.FramebufferSize()
					session.Dispatch(scene.ResizeEvent{Width: fbWidth, Height: fbHeight, PixelRatio: c.PixelRatio})
				case uv.KeyPressEvent:
					if ev.MatchString("escape", "ctrl+c") {
						return nil
					}
					if k, ok := terminalKey(ev); ok {
						session.Dispatch(scene.KeyEvent{Key: k})
					}
				default:
					if sev, ok := terminalPointer(ev); ok {
						session.Dispatch(sev)
					}
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame), 100*time.Millisecond)
		lastFrame = now

		fb := session.Frame(dt)
		termRenderer.Render(fb)
		hud.update()
		drawOverlay(term, session, width, height)
		hud.draw(term, session, width, height)
		if err := termRenderer.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func terminalKey(ev uv.KeyPressEvent) (scene.Key, bool) {
	switch {
	case ev.MatchString("x"):
		return scene.KeyWireframe, true
	case ev.MatchString("i"):
		return scene.KeyOverlay, true
	case ev.MatchString("r"):
		return scene.KeyReset, true
	case ev.MatchString("+", "="):
		return scene.KeyZoomIn, true
	case ev.MatchString("-", "_"):
		return scene.KeyZoomOut, true
	}
	return 0, false
}

// terminalPointer maps a mouse event on cell (col, row) to the centre of the
// cell in framebuffer pixels; each row holds two pixel rows.
func terminalPointer(ev uv.Event) (scene.Event, bool) {
	px := func(m uv.Mouse) (float64, float64) {
		return float64(m.X) + 0.5, float64(m.Y*2 + 1)
	}
	switch ev := ev.(type) {
	case uv.MouseClickEvent:
		if ev.Button != uv.MouseLeft {
			return nil, false
		}
		x, y := px(uv.Mouse(ev))
		return scene.PointerDownEvent{X: x, Y: y}, true
	case uv.MouseReleaseEvent:
		x, y := px(uv.Mouse(ev))
		return scene.PointerUpEvent{X: x, Y: y}, true
	case uv.MouseMotionEvent:
		x, y := px(uv.Mouse(ev))
		return scene.PointerMoveEvent{X: x, Y: y}, true
	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return scene.WheelEvent{Delta: 1}, true
		case uv.MouseWheelDown:
			return scene.WheelEvent{Delta: -1}, true
		}
	}
	return nil, false
}

// drawOverlay shows the hover label next to the pointer.
func drawOverlay(scr uv.Screen, s *scene.Session, width, height int) {
	if !s.Overlay().Visible() {
		return
	}
	p := s.Pointer()
	label := overlayStyle.Render(s.Overlay().Text())
	col := min(int(p.X)+2, max(width-lipgloss.Width(label), 0))
	row := min(int(p.Y)/2, max(height-2, 0))
	uv.NewStyledString(label).Draw(scr, uv.Rect(col, row, lipgloss.Width(label), 1))
}

// statusLine is the bottom row: frame rate and interaction state.
type statusLine struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newStatusLine() *statusLine {
	return &statusLine{fpsTime: time.Now()}
}

// update counts a frame; call once per frame.
func (h *statusLine) update() {
	h.fpsFrames++
	if elapsed := time.Since(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *statusLine) draw(scr uv.Screen, s *scene.Session, width, height int) {
	m := s.Machine()
	state := m.State().String()
	style := statusStyle
	if m.Paused() {
		style = pausedStyle
	}
	if m.State() == interaction.CoolingDown {
		state = fmt.Sprintf("%s %d", state, m.Countdown())
	}
	mode := ""
	if s.Wireframe() {
		mode = " wireframe"
	}
	if s.Orbiting() {
		mode += " orbiting"
	}
	text := fmt.Sprintf(" %.0f fps  %s%s  x:wire i:overlay r:reset esc:quit ", h.fps, state, mode)
	line := style.Width(width).MaxWidth(width).Render(text)
	uv.NewStyledString(line).Draw(scr, uv.Rect(0, height-1, width, 1))
}

// redirectLog sends log output to path, or discards it, while the terminal
// UI owns the screen. The returned func restores stderr.
func redirectLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
