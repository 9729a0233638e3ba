// Package platform opens the GLFW window the viewer runs in, polls its
// input into an input.State and presents CPU rendered frames through
// WebGPU.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window is a GLFW window without a GL context. GLFW calls must come from
// the goroutine that created it.
type Window struct {
	Width, Height int

	handle *glfw.Window
	title  string
	scroll float64
}

func NewWindow(width, height int, title string) (*Window, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "slim"
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("platform: init glfw: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	handle, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("platform: create window: %w", err)
	}
	w := &Window{Width: width, Height: height, handle: handle, title: title}
	handle.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		w.scroll += dy
	})
	return w, nil
}

func (w *Window) ShouldClose() bool { return w.handle.ShouldClose() }

func (w *Window) Close() { w.handle.SetShouldClose(true) }

func (w *Window) Title() string { return w.title }

func (w *Window) SetTitle(title string) {
	w.title = title
	w.handle.SetTitle(title)
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

// Destroy closes the window and shuts GLFW down.
func (w *Window) Destroy() {
	w.handle.Destroy()
	glfw.Terminate()
}
