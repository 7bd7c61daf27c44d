package lifecycle

import "testing"

type docStatus string

const (
	draft docStatus = "draft"
	sent  docStatus = "sent"
	paid  docStatus = "paid"
)

func testMachine() Machine[docStatus] {
	return New(map[docStatus][]docStatus{
		draft: {sent},
		sent:  {paid},
		paid:  {},
	})
}

func TestTransitionForwardOnly(t *testing.T) {
	m := testMachine()

	if err := m.Transition(draft, sent); err != nil {
		t.Fatalf("draft -> sent: %v", err)
	}
	if err := m.Transition(sent, paid); err != nil {
		t.Fatalf("sent -> paid: %v", err)
	}

	backward := [][2]docStatus{
		{sent, draft},
		{paid, sent},
		{paid, draft},
	}
	for _, pair := range backward {
		if err := m.Transition(pair[0], pair[1]); err != ErrIllegalTransition {
			t.Fatalf("%s -> %s: want ErrIllegalTransition, got %v", pair[0], pair[1], err)
		}
	}

	// No skipping states either.
	if err := m.Transition(draft, paid); err != ErrIllegalTransition {
		t.Fatalf("draft -> paid: want ErrIllegalTransition, got %v", err)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	m := testMachine()

	if err := m.Transition(draft, docStatus("archived")); err != ErrUnknownStatus {
		t.Fatalf("want ErrUnknownStatus, got %v", err)
	}
	if err := m.Transition(docStatus("archived"), draft); err != ErrUnknownStatus {
		t.Fatalf("want ErrUnknownStatus, got %v", err)
	}
}

func TestTerminal(t *testing.T) {
	m := testMachine()

	if m.Terminal(draft) || m.Terminal(sent) {
		t.Fatal("draft and sent must not be terminal")
	}
	if !m.Terminal(paid) {
		t.Fatal("paid must be terminal")
	}
	if m.Terminal(docStatus("archived")) {
		t.Fatal("unknown status must not be terminal")
	}
}
