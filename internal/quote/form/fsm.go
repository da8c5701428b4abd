package form

// State of a single form field.
type State string

const (
	StateUntouched State = "untouched"
	StateTouched   State = "touched"
	StateValid     State = "valid"
	StateInvalid   State = "invalid"
)

var transitions = map[State]map[State]struct{}{
	StateUntouched: {StateTouched: {}, StateValid: {}, StateInvalid: {}},
	StateTouched:   {StateValid: {}, StateInvalid: {}},
	StateValid:     {StateTouched: {}, StateInvalid: {}},
	StateInvalid:   {StateTouched: {}, StateValid: {}},
}

// CanTransition reports whether a field may move from one state to another.
// Only a reset returns a field to untouched.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}
