package frame

// Phase identifies one stage of a frame.
type Phase uint8

const (
	// Setup resets per-frame state.
	Setup Phase = iota
	// Read measures geometry.
	Read
	// Update publishes changes.
	Update
	// Render draws.
	Render

	numPhases = 4
)

// Phases lists every phase in execution order.
var Phases = [numPhases]Phase{Setup, Read, Update, Render}

func (p Phase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Read:
		return "read"
	case Update:
		return "update"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}
