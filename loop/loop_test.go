package loop

import (
	"testing"
	"time"
)

func TestTimerFires(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	fired := make(chan struct{}, 1)
	l.AddTimer(10*time.Millisecond, func() { fired <- struct{}{} })

	go l.Run()
	defer l.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestIntervalFiresRepeatedly(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	count := make(chan struct{}, 8)
	timer := l.AddInterval(5*time.Millisecond, func() {
		select {
		case count <- struct{}{}:
		default:
		}
	})
	defer timer.Stop()

	go l.Run()
	defer l.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-count:
		case <-time.After(2 * time.Second):
			t.Fatalf("interval tick %d did not fire", i)
		}
	}
}

func TestPostRunsOnLoopGoroutine(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	done := make(chan struct{})
	go l.Run()
	defer l.Stop()

	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted function did not run")
	}
}

func TestAsyncWorkCounter(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if l.AsyncWork() != 0 {
		t.Fatalf("initial AsyncWork = %d", l.AsyncWork())
	}
	l.IncrementAsyncWork()
	l.IncrementAsyncWork()
	l.DecrementAsyncWork()
	if got := l.AsyncWork(); got != 1 {
		t.Fatalf("AsyncWork = %d, want 1", got)
	}
}

func TestStopStopsRun(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	go l.Run()
	// Give it a moment to actually start.
	time.Sleep(20 * time.Millisecond)
	if !l.Running() {
		t.Fatal("loop did not report running")
	}
	l.Stop()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	if l.Running() {
		t.Fatal("loop still reports running after Stop")
	}
}
