package tomo

// Event is one of the closed set of navigation inputs that drive the
// current tomographic index. Back has no forward counterpart in the k
// dimension; the asymmetry is part of the event model.
type Event int

const (
	EventUp Event = iota
	EventDown
	EventLeft
	EventRight
	EventBack
	EventStart
	EventEnter
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventUp:
		return "up"
	case EventDown:
		return "down"
	case EventLeft:
		return "left"
	case EventRight:
		return "right"
	case EventBack:
		return "back"
	case EventStart:
		return "start"
	case EventEnter:
		return "enter"
	case EventStop:
		return "stop"
	}
	return "unknown"
}

// Navigator walks a single tomographic index through the coordinate
// space in response to events. All movement wraps modulo the coordinate
// range; no transition ever fails. After a stop event further events are
// ignored.
type Navigator struct {
	idx    Index
	n      int
	halted bool
}

// NewNavigator returns a navigator at the origin for a coordinate range
// of n per dimension.
func NewNavigator(n int) *Navigator {
	if n <= 0 {
		n = 10
	}
	return &Navigator{idx: NewIndex(0, 0, 0), n: n}
}

// Index returns the current tomographic index.
func (nav *Navigator) Index() Index { return nav.idx }

// Halted reports whether a stop event has been processed.
func (nav *Navigator) Halted() bool { return nav.halted }

// Handle applies one event. The returned commit flag is true only for an
// enter event, signalling that the caller should run a protocol cycle at
// the current index. Enter does not itself change the index.
func (nav *Navigator) Handle(e Event) (commit bool) {
	if nav.halted {
		return false
	}

	i, j, k := nav.idx.I, nav.idx.J, nav.idx.K
	n := nav.n

	switch e {
	case EventUp:
		i = (i + 1) % n
	case EventDown:
		i = (i - 1 + n) % n
	case EventLeft:
		j = (j - 1 + n) % n
	case EventRight:
		j = (j + 1) % n
	case EventBack:
		k = (k - 1 + n) % n
	case EventStart:
		i, j, k = 0, 0, 0
	case EventEnter:
		return true
	case EventStop:
		nav.halted = true
		return false
	}

	nav.idx.Set(i, j, k)
	return false
}
