package form

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/slices"

	"github.com/iiSmitty/my-it-services/internal/quote/message"
)

// MinNameLength is the minimum rune count of a trimmed name.
const MinNameLength = 2

// Error messages shown next to invalid fields.
const (
	MsgRequired     = "This field is required"
	MsgNameTooShort = "Please enter at least 2 characters"
	MsgSelect       = "Please select an option"
)

// Field identifies a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldService Field = "service"
	FieldUrgency Field = "urgency"
	FieldDetails Field = "details"
)

// Required lists the validated fields in form order.
var Required = []Field{FieldName, FieldService, FieldUrgency}

// FieldState is the validation status of one field.
type FieldState struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// Result summarises a full validation pass.
type Result struct {
	Valid        bool                 `json:"valid"`
	Fields       map[Field]FieldState `json:"fields"`
	FirstInvalid Field                `json:"first_invalid,omitempty"`
	DetailsChars int                  `json:"details_chars"`
}

// Form is the quote form. Methods return updated copies.
type Form struct {
	name     string
	services []string
	urgency  string
	details  string
	states   [3]FieldState
}

// New returns an untouched form with defaultUrgency pre-selected.
func New(defaultUrgency string) Form {
	f := Form{urgency: defaultUrgency}
	for i := range f.states {
		f.states[i] = FieldState{State: StateUntouched}
	}
	return f
}

// FromRequest loads every value of req into a fresh form.
func FromRequest(req message.Request, defaultUrgency string) Form {
	f := New(defaultUrgency)
	f = f.SetName(req.Name)
	f = f.SelectServices(req.Services...)
	if strings.TrimSpace(req.Urgency) != "" {
		f = f.SelectUrgency(req.Urgency)
	}
	return f.SetDetails(req.Details)
}

func (f Form) SetName(v string) Form {
	f.name = v
	return f.touch(FieldName)
}

// SelectServices replaces the selected services, dropping blanks.
func (f Form) SelectServices(ids ...string) Form {
	f.services = nil
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			f.services = append(f.services, id)
		}
	}
	return f.touch(FieldService)
}

func (f Form) SelectUrgency(id string) Form {
	f.urgency = strings.TrimSpace(id)
	return f.touch(FieldUrgency)
}

// SetDetails stores the optional free text. It has no validation state.
func (f Form) SetDetails(v string) Form {
	f.details = v
	return f
}

// Blur validates a single field, as when focus leaves it.
func (f Form) Blur(field Field) Form {
	i, ok := index(field)
	if !ok {
		return f
	}
	msg := f.check(field)
	if msg == "" {
		return f.move(i, FieldState{State: StateValid})
	}
	return f.move(i, FieldState{State: StateInvalid, Error: msg})
}

// Validate checks every required field and reports the first invalid one.
func (f Form) Validate() (Form, Result) {
	res := Result{Valid: true, Fields: make(map[Field]FieldState, len(Required))}
	for _, field := range Required {
		f = f.Blur(field)
		st := f.State(field)
		res.Fields[field] = st
		if st.State == StateInvalid && res.Valid {
			res.Valid = false
			res.FirstInvalid = field
		}
	}
	res.DetailsChars = f.DetailsChars()
	return f, res
}

func (f Form) State(field Field) FieldState {
	i, ok := index(field)
	if !ok {
		return FieldState{}
	}
	return f.states[i]
}

// DetailsChars is the live counter value for the details box.
func (f Form) DetailsChars() int { return utf8.RuneCountInString(f.details) }

// Request returns the trimmed form values.
func (f Form) Request() message.Request {
	return message.Request{
		Name:     strings.TrimSpace(f.name),
		Services: slices.Clone(f.services),
		Urgency:  f.urgency,
		Details:  strings.TrimSpace(f.details),
	}
}

// Reset clears the form back to its initial state.
func (f Form) Reset(defaultUrgency string) Form { return New(defaultUrgency) }

func (f Form) check(field Field) string {
	switch field {
	case FieldName:
		return ValidateName(f.name)
	case FieldService:
		return ValidateChoice(len(f.services) > 0)
	case FieldUrgency:
		return ValidateChoice(f.urgency != "")
	}
	return ""
}

func (f Form) touch(field Field) Form {
	i, _ := index(field)
	return f.move(i, FieldState{State: StateTouched})
}

func (f Form) move(i int, next FieldState) Form {
	if !CanTransition(f.states[i].State, next.State) {
		return f
	}
	f.states[i] = next
	return f
}

func index(field Field) (int, bool) {
	i := slices.Index(Required, field)
	return i, i >= 0
}

// ValidateName returns the error message for a name, or "" when it is valid.
func ValidateName(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return MsgRequired
	}
	if utf8.RuneCountInString(v) < MinNameLength {
		return MsgNameTooShort
	}
	return ""
}

// ValidateChoice returns the error message for a radio or checkbox group.
func ValidateChoice(selected bool) string {
	if !selected {
		return MsgSelect
	}
	return ""
}
