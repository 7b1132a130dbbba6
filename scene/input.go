package scene

// EventKind discriminates the input event union.
type EventKind uint8

const (
	EventPointerMove EventKind = iota
	EventPointerButton
	EventKey
	EventText
	EventScroll
	EventResize
)

// PointerButton identifies a pointer button.
type PointerButton uint8

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
	ButtonMiddle
	ButtonExtra1
	ButtonExtra2
)

// Event is one raw input event gathered from the host's window message
// stream. The relay fills only the fields relevant to Kind; the others are
// zero. Translation into widget semantics is the GUI engine's job.
type Event struct {
	Kind EventKind

	// Pos is the pointer position in logical pixels (PointerMove,
	// PointerButton, Scroll).
	Pos [2]float32

	// Button and Pressed describe a button transition (PointerButton).
	Button  PointerButton
	Pressed bool

	// Key is a platform key code; Pressed gives the direction (Key).
	Key uint32

	// Rune is the typed character (Text).
	Rune rune

	// Delta is the scroll delta in logical pixels (Scroll).
	Delta [2]float32

	// Size is the new client size in physical pixels (Resize).
	Size [2]int
}

// Relay supplies the input events accumulated since the previous frame.
// Delivery timing and message decoding are the relay's responsibility; the
// overlay core only drains it once per intercepted present call.
type Relay interface {
	Drain() []Event
}

// NopRelay is a Relay that never delivers events. It is the default when no
// input path is wired up.
type NopRelay struct{}

// Drain returns nil.
func (NopRelay) Drain() []Event { return nil }
