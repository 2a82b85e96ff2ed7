package port

import (
	"encoding/json"
	"testing"
)

func TestState(t *testing.T) {
	if State(0) != Low || State(1) != High || State(7) != Invalid {
		t.Fatal("State mapping")
	}
}

func TestEventTypeJSON(t *testing.T) {
	b, err := json.Marshal(Event{Type: Interrupt, Name: "key", Pin: 18})
	if err != nil {
		t.Fatal(err)
	}

	var e Event
	if err = json.Unmarshal(b, &e); err != nil {
		t.Fatal(err)
	}
	if e.Type != Interrupt || e.Name != "key" || e.Pin != 18 {
		t.Fatalf("decoded %+v from %s", e, b)
	}

	var ty EventType
	_ = ty.UnmarshalText([]byte("bogus"))
	if ty.String() != "invalid" {
		t.Fatalf("unknown type decoded as %v", ty)
	}
}
