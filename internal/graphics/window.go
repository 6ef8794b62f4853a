package graphics

import (
	"sync/atomic"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	orbitDegreesPerPixel = 0.4
	zoomStep             = 0.9
)

// Window wraps the GLFW window and turns input into camera moves. It
// implements game.Surface.
type Window struct {
	win      *glfw.Window
	renderer *Renderer

	dragging     bool
	lastX, lastY float64

	focused   atomic.Bool
	iconified atomic.Bool

	// OnReload is called when R is pressed
	OnReload func()
}

// SetupWindow creates a window with a current 4.1 core context and loads GL.
// glfw.Init must already have run on the main thread.
func SetupWindow(title string, vsync bool) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(WinWidth, WinHeight, title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, err
	}

	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// NewWindow binds input callbacks on win to the renderer's camera
func NewWindow(win *glfw.Window, r *Renderer) *Window {
	w := &Window{win: win, renderer: r}
	w.focused.Store(win.GetAttrib(glfw.Focused) == glfw.True)
	w.iconified.Store(win.GetAttrib(glfw.Iconified) == glfw.True)

	fbw, fbh := win.GetFramebufferSize()
	r.SetViewport(fbw, fbh)

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		r.SetViewport(width, height)
	})
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.focused.Store(focused)
	})
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		w.iconified.Store(iconified)
	})
	win.SetMouseButtonCallback(func(gw *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		w.dragging = action == glfw.Press
		if w.dragging {
			w.lastX, w.lastY = gw.GetCursorPos()
		}
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if !w.dragging {
			return
		}
		dx, dy := xpos-w.lastX, ypos-w.lastY
		w.lastX, w.lastY = xpos, ypos
		r.Camera().Orbit(float32(-dx*orbitDegreesPerPixel), float32(dy*orbitDegreesPerPixel))
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if yoff > 0 {
			r.Camera().Zoom(zoomStep)
		} else if yoff < 0 {
			r.Camera().Zoom(1 / zoomStep)
		}
	})
	win.SetKeyCallback(func(gw *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			gw.SetShouldClose(true)
		case glfw.KeyR:
			if w.OnReload != nil {
				w.OnReload()
			}
		}
	})
	return w
}

// ShouldClose reports whether the user asked to close the window
func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// Present draws the current instances, swaps and polls events
func (w *Window) Present() {
	w.renderer.Draw()
	w.win.SwapBuffers()
	glfw.PollEvents()
}

// Predicates exposes window state as named pause predicates
func (w *Window) Predicates() map[string]func() bool {
	return map[string]func() bool{
		"unfocused": func() bool { return !w.focused.Load() },
		"iconified": w.iconified.Load,
	}
}
