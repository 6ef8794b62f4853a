package config

// PauseKind tags the variant held by a Pause
type PauseKind int

const (
	// PauseUnset never pauses
	PauseUnset PauseKind = iota
	// PauseFixed holds a literal
	PauseFixed
	// PauseDynamic asks a predicate every tick
	PauseDynamic
)

// Pause is the pause predicate: unset, a fixed boolean, or a callback.
// The zero value is unset.
type Pause struct {
	kind  PauseKind
	fixed bool
	fn    func() bool
}

// FixedPause returns a pause that is always v
func FixedPause(v bool) Pause {
	return Pause{kind: PauseFixed, fixed: v}
}

// DynamicPause returns a pause evaluated by fn on every tick. A nil fn is unset.
func DynamicPause(fn func() bool) Pause {
	if fn == nil {
		return Pause{}
	}
	return Pause{kind: PauseDynamic, fn: fn}
}

// Kind returns the variant tag
func (p Pause) Kind() PauseKind {
	return p.kind
}

// Paused evaluates the predicate
func (p Pause) Paused() bool {
	switch p.kind {
	case PauseFixed:
		return p.fixed
	case PauseDynamic:
		return p.fn()
	default:
		return false
	}
}
