// Package input holds the keyboard and mouse state polled once per frame.
// The platform layer fills it; tests script it directly.
package input

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyMinus
	KeyEqual
	KeyShift
	KeyControl
	KeyLeftAlt
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	KeyCount
)

type State struct {
	Pressed [KeyCount]bool

	JustPressed  [KeyCount]bool
	JustReleased [KeyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	// MouseMoved is set when the cursor moved since the last frame.
	MouseMoved bool
	WheelDelta float64

	WindowWidth, WindowHeight int
}

// BeginFrame clears the per frame edges and deltas. Call it before feeding
// the events of a new frame.
func (s *State) BeginFrame() {
	s.JustPressed = [KeyCount]bool{}
	s.JustReleased = [KeyCount]bool{}
	s.MouseDeltaX, s.MouseDeltaY = 0, 0
	s.MouseMoved = false
	s.WheelDelta = 0
}

// SetKey records the current state of a key or mouse button and derives the
// press and release edges from the previous one.
func (s *State) SetKey(key int, down bool) {
	if key < 0 || key >= KeyCount {
		return
	}
	if down {
		if !s.Pressed[key] {
			s.JustPressed[key] = true
		}
		s.Pressed[key] = true
	} else {
		if s.Pressed[key] {
			s.JustReleased[key] = true
		}
		s.Pressed[key] = false
	}
}

// MoveMouse sets the cursor position and accumulates the frame delta.
func (s *State) MoveMouse(x, y float64) {
	if x == s.MouseX && y == s.MouseY {
		return
	}
	s.MouseDeltaX += x - s.MouseX
	s.MouseDeltaY += y - s.MouseY
	s.MouseX, s.MouseY = x, y
	s.MouseMoved = true
}

func (s *State) Scroll(dy float64) { s.WheelDelta += dy }

func (s *State) Alt() bool { return s.Pressed[KeyLeftAlt] }

func (s *State) AnyMouseButton() bool {
	return s.Pressed[MouseButtonLeft] || s.Pressed[MouseButtonRight] || s.Pressed[MouseButtonMiddle]
}
