package cluster

import (
	"io"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ecewo/loop"
)

func testLogEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestSupervisor(t *testing.T, workers int) (*Supervisor, *loop.Loop) {
	t.Helper()
	lp, err := loop.New()
	if err != nil {
		t.Fatalf("loop.New: %v", err)
	}
	go lp.Run()
	deadline := time.Now().Add(time.Second)
	for !lp.Running() {
		if time.Now().After(deadline) {
			t.Fatal("loop never started")
		}
		time.Sleep(time.Millisecond)
	}
	t.Cleanup(func() {
		lp.Stop()
		<-lp.Done()
		lp.Close()
	})

	s := &Supervisor{
		cfg:      Config{Workers: workers, Port: 18080},
		execPath: "/bin/test-binary",
		lp:       lp,
		log:      testLogEntry(),
	}
	return s, lp
}

func TestRespawnThrottleDisablesAfterThreeCrashesWithinWindow(t *testing.T) {
	s, _ := newTestSupervisor(t, 1)
	var spawns atomic.Int32
	s.execCommand = func(argv []string) *exec.Cmd {
		spawns.Add(1)
		return exec.Command("sh", "-c", "exit 1")
	}

	w := &workerRecord{id: 0, port: s.cfg.Port}
	s.workers = []*workerRecord{w}

	if err := s.spawnWorker(w); err != nil {
		t.Fatalf("spawnWorker: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for w.respawnAllowed() {
		if time.Now().After(deadline) {
			t.Fatal("respawn was never disabled after repeated crashes")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if spawns.Load() < 3 {
		t.Fatalf("spawns = %d, want at least 3 before throttling", spawns.Load())
	}
}

func TestShutdownSuppressesRespawn(t *testing.T) {
	s, _ := newTestSupervisor(t, 1)
	var spawns atomic.Int32
	s.execCommand = func(argv []string) *exec.Cmd {
		spawns.Add(1)
		return exec.Command("sleep", "5")
	}

	w := &workerRecord{id: 0, port: s.cfg.Port}
	s.workers = []*workerRecord{w}

	if err := s.spawnWorker(w); err != nil {
		t.Fatalf("spawnWorker: %v", err)
	}

	s.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for w.isActive() {
		if time.Now().After(deadline) {
			t.Fatal("worker never observed SIGTERM")
		}
		time.Sleep(20 * time.Millisecond)
	}

	// Give handleExit a moment to run on the loop goroutine, then confirm
	// no respawn was attempted.
	time.Sleep(200 * time.Millisecond)
	if got := spawns.Load(); got != 1 {
		t.Fatalf("spawns = %d, want 1 (no respawn during shutdown)", got)
	}
}

func TestGracefulRestartBypassesThrottle(t *testing.T) {
	s, _ := newTestSupervisor(t, 1)
	var spawns atomic.Int32
	s.execCommand = func(argv []string) *exec.Cmd {
		n := spawns.Add(1)
		if n < 3 {
			return exec.Command("sh", "-c", "exit 1")
		}
		return exec.Command("sleep", "5")
	}

	w := &workerRecord{id: 0, port: s.cfg.Port}
	s.workers = []*workerRecord{w}

	s.gracefulRestart.Store(true)
	if err := s.spawnWorker(w); err != nil {
		t.Fatalf("spawnWorker: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for spawns.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("graceful restart did not bypass the crash throttle")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !w.respawnAllowed() {
		t.Fatal("graceful restart must not trip the crash throttle")
	}
}
