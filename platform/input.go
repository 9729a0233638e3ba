package platform

import (
	"github.com/gekko3d/slim/rt/input"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// PollInput pumps the GLFW event queue and records the frame's keyboard,
// mouse and window state into s.
func (w *Window) PollInput(s *input.State) {
	s.BeginFrame()
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		s.SetKey(key, w.handle.GetKey(glfwKey) == glfw.Press)
	}
	for key, button := range buttonToGlfw {
		s.SetKey(key, w.handle.GetMouseButton(button) == glfw.Press)
	}
	s.MoveMouse(w.handle.GetCursorPos())
	s.Scroll(w.scroll)
	w.scroll = 0

	s.WindowWidth, s.WindowHeight = w.handle.GetSize()
	w.Width, w.Height = s.WindowWidth, s.WindowHeight
}

var buttonToGlfw = map[int]glfw.MouseButton{
	input.MouseButtonLeft:   glfw.MouseButtonLeft,
	input.MouseButtonRight:  glfw.MouseButtonRight,
	input.MouseButtonMiddle: glfw.MouseButtonMiddle,
}

var keyToGlfw = map[int]glfw.Key{
	input.KeyA:         glfw.KeyA,
	input.KeyB:         glfw.KeyB,
	input.KeyC:         glfw.KeyC,
	input.KeyD:         glfw.KeyD,
	input.KeyE:         glfw.KeyE,
	input.KeyF:         glfw.KeyF,
	input.KeyG:         glfw.KeyG,
	input.KeyH:         glfw.KeyH,
	input.KeyI:         glfw.KeyI,
	input.KeyJ:         glfw.KeyJ,
	input.KeyK:         glfw.KeyK,
	input.KeyL:         glfw.KeyL,
	input.KeyM:         glfw.KeyM,
	input.KeyN:         glfw.KeyN,
	input.KeyO:         glfw.KeyO,
	input.KeyP:         glfw.KeyP,
	input.KeyQ:         glfw.KeyQ,
	input.KeyR:         glfw.KeyR,
	input.KeyS:         glfw.KeyS,
	input.KeyT:         glfw.KeyT,
	input.KeyU:         glfw.KeyU,
	input.KeyV:         glfw.KeyV,
	input.KeyW:         glfw.KeyW,
	input.KeyX:         glfw.KeyX,
	input.KeyY:         glfw.KeyY,
	input.KeyZ:         glfw.KeyZ,
	input.Key0:         glfw.Key0,
	input.Key1:         glfw.Key1,
	input.Key2:         glfw.Key2,
	input.Key3:         glfw.Key3,
	input.Key4:         glfw.Key4,
	input.Key5:         glfw.Key5,
	input.Key6:         glfw.Key6,
	input.Key7:         glfw.Key7,
	input.Key8:         glfw.Key8,
	input.Key9:         glfw.Key9,
	input.KeySpace:     glfw.KeySpace,
	input.KeyEnter:     glfw.KeyEnter,
	input.KeyEscape:    glfw.KeyEscape,
	input.KeyTab:       glfw.KeyTab,
	input.KeyBackspace: glfw.KeyBackspace,
	input.KeyDelete:    glfw.KeyDelete,
	input.KeyRight:     glfw.KeyRight,
	input.KeyLeft:      glfw.KeyLeft,
	input.KeyDown:      glfw.KeyDown,
	input.KeyUp:        glfw.KeyUp,
	input.KeyF1:        glfw.KeyF1,
	input.KeyF2:        glfw.KeyF2,
	input.KeyF3:        glfw.KeyF3,
	input.KeyF4:        glfw.KeyF4,
	input.KeyMinus:     glfw.KeyMinus,
	input.KeyEqual:     glfw.KeyEqual,
	input.KeyShift:     glfw.KeyLeftShift,
	input.KeyControl:   glfw.KeyLeftControl,
	input.KeyLeftAlt:   glfw.KeyLeftAlt,
}
