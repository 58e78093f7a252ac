package resolver

// State is the resolution state of one document node.
type State int

const (
	// StateUnvisited means resolution has not started for the node.
	StateUnvisited State = iota
	// StateInProgress means the node is on the current resolution stack.
	// Encountering it again is a structural cycle, answered with the
	// slot reserved at entry rather than further recursion.
	StateInProgress
	// StateResolved means the node's type has been fully built.
	StateResolved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in-progress"
	case StateResolved:
		return "resolved"
	default:
		return "unvisited"
	}
}

// Tracker records per-node resolution state keyed by canonical key,
// along with the arena slot reserved when a node enters InProgress.
// The slot is what makes self-referential and mutually-referential
// graphs representable: a back-edge is answered immediately with the
// reserved slot index, and the slot's content is fixed up when the
// node finishes building.
type Tracker struct {
	states map[string]State
	slots  map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states: map[string]State{},
		slots:  map[string]int{},
	}
}

// StateOf returns the current state of a canonical key.
func (t *Tracker) StateOf(key string) State {
	return t.states[key]
}

// Begin transitions a key from Unvisited to InProgress, recording the
// arena slot reserved for its eventual type.
func (t *Tracker) Begin(key string, slot int) {
	t.states[key] = StateInProgress
	t.slots[key] = slot
}

// Slot returns the arena slot reserved for a key at Begin.
func (t *Tracker) Slot(key string) (int, bool) {
	slot, ok := t.slots[key]
	return slot, ok
}

// Finish transitions a key to Resolved.
func (t *Tracker) Finish(key string) {
	t.states[key] = StateResolved
}
