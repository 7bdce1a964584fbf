package engine

import "testing"

func TestEventInvokeOrder(t *testing.T) {
	var e Event
	var order []int
	e.AddListener(func() { order = append(order, 1) })
	e.AddListener(func() { order = append(order, 2) })
	e.AddListener(nil)

	e.Invoke()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected [1 2], got %v", order)
	}
	if e.GetListenerCount() != 2 {
		t.Errorf("Expected 2 listeners, got %d", e.GetListenerCount())
	}
}

func TestEventRemoveListener(t *testing.T) {
	var e Event
	calls := 0
	id := e.AddListener(func() { calls++ })
	e.AddListener(func() { calls += 10 })

	e.RemoveListener(id)
	e.Invoke()
	if calls != 10 {
		t.Errorf("Expected only the second listener to run, got %d", calls)
	}
}

func TestEventListenerRemovesItself(t *testing.T) {
	var e Event
	calls := 0
	var id ListenerID
	id = e.AddListener(func() {
		calls++
		e.RemoveListener(id)
	})

	e.Invoke()
	e.Invoke()
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}
