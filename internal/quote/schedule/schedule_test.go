package schedule

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []string
	m.Schedule(3*time.Second, func() { order = append(order, "c") })
	m.Schedule(1*time.Second, func() { order = append(order, "a") })
	m.Schedule(1*time.Second, func() { order = append(order, "b") })
	m.Schedule(10*time.Second, func() { order = append(order, "late") })

	if fired := m.Advance(5 * time.Second); fired != 3 {
		t.Fatalf("expected 3 tasks fired, got %d", fired)
	}
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
	if !m.Now().Equal(epoch.Add(5 * time.Second)) {
		t.Fatalf("unexpected clock %v", m.Now())
	}
	if m.Pending() != 1 {
		t.Fatalf("expected 1 pending task, got %d", m.Pending())
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual(epoch)
	ran := false
	task := m.Schedule(time.Second, func() { ran = true })
	if !task.Cancel() {
		t.Fatal("expected first cancel to succeed")
	}
	if task.Cancel() {
		t.Fatal("expected second cancel to report false")
	}
	m.Advance(time.Minute)
	if ran {
		t.Fatal("cancelled task ran")
	}
}

func TestManualCancelAfterFire(t *testing.T) {
	m := NewManual(epoch)
	task := m.Schedule(time.Second, func() {})
	m.Advance(time.Second)
	if task.Cancel() {
		t.Fatal("expected cancel after fire to report false")
	}
}

func TestManualChainedTasks(t *testing.T) {
	m := NewManual(epoch)
	var at []time.Time
	m.Schedule(time.Second, func() {
		at = append(at, m.Now())
		m.Schedule(2*time.Second, func() { at = append(at, m.Now()) })
	})

	if fired := m.Advance(5 * time.Second); fired != 2 {
		t.Fatalf("expected chained task to fire, got %d", fired)
	}
	if !at[0].Equal(epoch.Add(time.Second)) || !at[1].Equal(epoch.Add(3*time.Second)) {
		t.Fatalf("unexpected fire times %v", at)
	}
}

func TestNilTaskCancel(t *testing.T) {
	var task *Task
	if task.Cancel() {
		t.Fatal("nil task cancel should be false")
	}
}

func TestRealSchedule(t *testing.T) {
	s := NewReal()
	var wg sync.WaitGroup
	wg.Add(1)
	s.Schedule(5*time.Millisecond, wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("real task did not fire")
	}

	task := s.Schedule(time.Hour, func() { t.Error("cancelled task ran") })
	if !task.Cancel() {
		t.Fatal("expected cancel to succeed")
	}
}
