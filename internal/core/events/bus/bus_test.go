package bus

import (
	"errors"
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	got := 0
	b.Subscribe("entity.created", func(e Event) error {
		got++
		if e.Source != "/Player" {
			t.Errorf("source = %q", e.Source)
		}
		return nil
	})
	if err := b.Emit("entity.created", "/Player", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got != 1 {
		t.Fatalf("handler called %d times", got)
	}
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	seen := map[string]int{}
	b.Subscribe(Wildcard, func(e Event) error {
		seen[e.Type]++
		return nil
	})
	_ = b.Emit("a", "s", nil)
	_ = b.Emit("b", "s", nil)
	if seen["a"] != 1 || seen["b"] != 1 {
		t.Fatalf("wildcard missed events: %v", seen)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	unsub := b.Subscribe("e", func(Event) error { calls++; return nil })
	_ = b.Emit("e", "s", nil)
	unsub()
	unsub() // second call is a no-op
	_ = b.Emit("e", "s", nil)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := b.Subscribers("e"); n != 0 {
		t.Fatalf("subscribers = %d after unsubscribe", n)
	}
}

func TestHandlerPanicIsolated(t *testing.T) {
	b := New()
	reached := false
	b.Subscribe("e", func(Event) error { panic("boom") })
	b.Subscribe("e", func(Event) error { reached = true; return nil })

	err := b.Emit("e", "s", nil)
	if err == nil {
		t.Fatal("expected aggregated error from panicking handler")
	}
	if !reached {
		t.Fatal("second handler skipped after panic")
	}
}

func TestHandlerErrorsJoined(t *testing.T) {
	b := New()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	b.Subscribe("e", func(Event) error { return errA })
	b.Subscribe("e", func(Event) error { return errB })

	err := b.Emit("e", "s", nil)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("joined error missing parts: %v", err)
	}
}

func TestTimestampAssigned(t *testing.T) {
	b := New()
	b.Subscribe("e", func(e Event) error {
		if e.At.IsZero() {
			t.Error("event timestamp not set")
		}
		return nil
	})
	_ = b.Publish(Event{Type: "e", Source: "s"})
}
