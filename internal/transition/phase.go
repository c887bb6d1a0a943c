package transition

// Phase is the animation phase of a detail screen.
type Phase int

const (
	Idle Phase = iota
	Expanding
	Expanded
	Collapsing
	Gone
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Expanding:
		return "expanding"
	case Expanded:
		return "expanded"
	case Collapsing:
		return "collapsing"
	case Gone:
		return "gone"
	default:
		return "unknown"
	}
}

// BackSource says where a back request came from. Only used for logging.
type BackSource int

const (
	BackAffordance BackSource = iota // on-screen back control
	BackNative                       // esc / backspace through the nav stack
	BackRespond                      // respond mutation succeeded
)

func (s BackSource) String() string {
	switch s {
	case BackAffordance:
		return "affordance"
	case BackNative:
		return "native"
	case BackRespond:
		return "respond"
	default:
		return "unknown"
	}
}
