package core

import "testing"

func TestEventBusFireStopsWhenHandled(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	bus.Register(EVENT_CODE_RESIZED, "first", func(ctx EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	bus.Register(EVENT_CODE_RESIZED, "second", func(ctx EventContext) bool {
		calls = append(calls, "second")
		return false
	})

	if !bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}) {
		t.Fatal("Fire() = false, want true")
	}
	if len(calls) != 1 || calls[0] != "first" {
		t.Errorf("calls = %v, want [first]", calls)
	}
}

func TestEventBusDuplicateListener(t *testing.T) {
	bus := NewEventBus()
	fn := func(ctx EventContext) bool { return false }

	if !bus.Register(EVENT_CODE_LOAD_START, "l", fn) {
		t.Fatal("first Register() = false")
	}
	if bus.Register(EVENT_CODE_LOAD_START, "l", fn) {
		t.Error("duplicate Register() = true, want false")
	}
}

func TestEventBusUnregister(t *testing.T) {
	bus := NewEventBus()
	fired := 0
	bus.Register(EVENT_CODE_LOAD_COMPLETE, "l", func(ctx EventContext) bool {
		fired++
		return false
	})

	if !bus.Unregister(EVENT_CODE_LOAD_COMPLETE, "l") {
		t.Fatal("Unregister() = false, want true")
	}
	if bus.Unregister(EVENT_CODE_LOAD_COMPLETE, "l") {
		t.Error("second Unregister() = true, want false")
	}
	bus.Fire(EventContext{Type: EVENT_CODE_LOAD_COMPLETE})
	if fired != 0 {
		t.Errorf("listener fired %d times after Unregister", fired)
	}
}

func TestEventBusRegisterFromCallback(t *testing.T) {
	bus := NewEventBus()
	inner := 0
	bus.Register(EVENT_CODE_APPLICATION_QUIT, "outer", func(ctx EventContext) bool {
		bus.Register(EVENT_CODE_APPLICATION_QUIT, "inner", func(ctx EventContext) bool {
			inner++
			return false
		})
		return false
	})

	bus.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
	if inner != 0 {
		t.Errorf("listener registered during Fire ran in the same Fire (%d)", inner)
	}
	bus.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
	if inner != 1 {
		t.Errorf("inner fired %d times, want 1", inner)
	}
}
