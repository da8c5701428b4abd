package form

import (
	"testing"

	"github.com/iiSmitty/my-it-services/internal/quote/message"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(StateUntouched, StateTouched) {
		t.Fatal("expected untouched -> touched to be allowed")
	}
	if !CanTransition(StateTouched, StateInvalid) {
		t.Fatal("expected touched -> invalid to be allowed")
	}
	if !CanTransition(StateInvalid, StateTouched) {
		t.Fatal("expected invalid -> touched to be allowed")
	}
	if CanTransition(StateValid, StateUntouched) {
		t.Fatal("unexpected transition back to untouched")
	}
	if CanTransition(State("bogus"), StateValid) {
		t.Fatal("unexpected transition from unknown state")
	}
}

func TestValidateName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", MsgRequired},
		{"blank", "   ", MsgRequired},
		{"single char", "J", MsgNameTooShort},
		{"single char padded", "  J ", MsgNameTooShort},
		{"two chars", "Jo", ""},
		{"multibyte", "Žé", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateName(tc.in); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestFieldLifecycle(t *testing.T) {
	f := New("week")
	if st := f.State(FieldName); st.State != StateUntouched {
		t.Fatalf("expected untouched, got %s", st.State)
	}

	f = f.SetName("J")
	if st := f.State(FieldName); st.State != StateTouched {
		t.Fatalf("expected touched after input, got %s", st.State)
	}

	f = f.Blur(FieldName)
	st := f.State(FieldName)
	if st.State != StateInvalid || st.Error != MsgNameTooShort {
		t.Fatalf("expected invalid with short-name error, got %+v", st)
	}

	f = f.SetName("Jo")
	if st := f.State(FieldName); st.State != StateTouched || st.Error != "" {
		t.Fatalf("expected error cleared on input, got %+v", st)
	}

	f = f.Blur(FieldName)
	if st := f.State(FieldName); st.State != StateValid {
		t.Fatalf("expected valid, got %+v", st)
	}
}

func TestMethodsReturnCopies(t *testing.T) {
	orig := New("week")
	changed := orig.SetName("Jo").SelectServices("windows").Blur(FieldName)
	if orig.State(FieldName).State != StateUntouched {
		t.Fatal("original form was mutated")
	}
	if len(orig.Request().Services) != 0 {
		t.Fatal("original services were mutated")
	}
	if changed.State(FieldName).State != StateValid {
		t.Fatal("expected changed copy to be valid")
	}
}

func TestValidateReportsFirstInvalid(t *testing.T) {
	cases := []struct {
		name      string
		req       message.Request
		defUrg    string
		wantValid bool
		wantFirst Field
	}{
		{"all valid", message.Request{Name: "Thabo", Services: []string{"windows"}, Urgency: "week"}, "week", true, ""},
		{"default urgency", message.Request{Name: "Thabo", Services: []string{"windows"}}, "week", true, ""},
		{"missing name", message.Request{Services: []string{"windows"}}, "week", false, FieldName},
		{"missing service", message.Request{Name: "Thabo"}, "week", false, FieldService},
		{"missing urgency", message.Request{Name: "Thabo", Services: []string{"windows"}}, "", false, FieldUrgency},
		{"everything missing", message.Request{Services: []string{" "}}, "", false, FieldName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, res := FromRequest(tc.req, tc.defUrg).Validate()
			if res.Valid != tc.wantValid {
				t.Fatalf("expected valid=%v got %v (%+v)", tc.wantValid, res.Valid, res.Fields)
			}
			if res.FirstInvalid != tc.wantFirst {
				t.Fatalf("expected first invalid %q got %q", tc.wantFirst, res.FirstInvalid)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	_, res := New("").Validate()
	if res.Fields[FieldName].Error != MsgRequired {
		t.Fatalf("unexpected name error %q", res.Fields[FieldName].Error)
	}
	if res.Fields[FieldService].Error != MsgSelect {
		t.Fatalf("unexpected service error %q", res.Fields[FieldService].Error)
	}
	if res.Fields[FieldUrgency].Error != MsgSelect {
		t.Fatalf("unexpected urgency error %q", res.Fields[FieldUrgency].Error)
	}
}

func TestDetailsCounterAndRequest(t *testing.T) {
	f := New("week").SetName("  Lee ").SelectServices("windows", "", "hardware").SetDetails(" héllo ")
	if got := f.DetailsChars(); got != 7 {
		t.Fatalf("expected 7 chars, got %d", got)
	}
	req := f.Request()
	if req.Name != "Lee" || req.Details != "héllo" || req.Urgency != "week" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Services) != 2 {
		t.Fatalf("expected blanks to be dropped, got %v", req.Services)
	}
}

func TestReset(t *testing.T) {
	f := New("week").SetName("Lee").SelectUrgency("asap")
	f, _ = f.Validate()
	f = f.Reset("week")
	if f.State(FieldName).State != StateUntouched {
		t.Fatal("expected reset to clear field state")
	}
	if f.Request().Urgency != "week" || f.Request().Name != "" {
		t.Fatalf("unexpected values after reset %+v", f.Request())
	}
}
