package ember

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window owns the GLFW window the presentation surface wraps. GLFW requires
// the creating goroutine to stay on its OS thread.
type Window struct {
	glfwWin *glfw.Window
	width   int
	height  int
	title   string
}

func NewWindow(width, height int, title string) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: init glfw: %w", err)
	}

	// No OpenGL context, the surface goes to wgpu.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("window: create %dx%d %q: %w", width, height, title, err)
	}

	return &Window{
		glfwWin: win,
		width:   width,
		height:  height,
		title:   title,
	}, nil
}

// OnResize registers a pixel-size callback, used to reconfigure the
// swapchain.
func (w *Window) OnResize(fn func(widthPx, heightPx int)) {
	w.glfwWin.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(width, height)
	})
}

func (w *Window) Size() (int, int) {
	return w.glfwWin.GetSize()
}

func (w *Window) PixelSize() (int, int) {
	return w.glfwWin.GetFramebufferSize()
}

func (w *Window) ContentScale() float32 {
	sx, _ := w.glfwWin.GetContentScale()
	return sx
}

func (w *Window) ShouldClose() bool { return w.glfwWin.ShouldClose() }

// PollEvents pumps the platform event queue. Must run on the window's
// thread.
func (w *Window) PollEvents() { glfw.PollEvents() }

func (w *Window) Destroy() {
	w.glfwWin.Destroy()
	glfw.Terminate()
}
