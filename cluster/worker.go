package cluster

import (
	"os/exec"
	"sync"
	"time"
)

// maxRestartRing/throttleWindow bound respawn: a ring of up to three
// most-recent restart timestamps; if three restarts occur within five
// seconds, respawn is permanently disabled for that worker.
const (
	maxRestartRing = 3
	throttleWindow = 5 * time.Second
	respawnCooloff = 100 * time.Millisecond
)

// workerRecord tracks one worker slot across its whole supervised
// lifetime: possibly many spawn/exit cycles share the same id and port.
type workerRecord struct {
	id   int
	port int

	mu              sync.Mutex
	cmd             *exec.Cmd
	active          bool
	respawnDisabled bool
	restarts        []time.Time
}

func (w *workerRecord) setActive(cmd *exec.Cmd) {
	w.mu.Lock()
	w.cmd = cmd
	w.active = true
	w.mu.Unlock()
}

func (w *workerRecord) markExited() {
	w.mu.Lock()
	w.active = false
	w.mu.Unlock()
}

func (w *workerRecord) isActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// recordCrash appends now to the restart ring (evicting the oldest past
// three) and reports whether the ring now shows three crashes inside
// throttleWindow — at which point respawn is disabled permanently for
// this worker.
func (w *workerRecord) recordCrash(now time.Time) (disabledNow bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.restarts = append(w.restarts, now)
	if len(w.restarts) > maxRestartRing {
		w.restarts = w.restarts[len(w.restarts)-maxRestartRing:]
	}
	if len(w.restarts) == maxRestartRing && w.restarts[maxRestartRing-1].Sub(w.restarts[0]) < throttleWindow {
		w.respawnDisabled = true
	}
	return w.respawnDisabled
}

func (w *workerRecord) respawnAllowed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.respawnDisabled
}

func (w *workerRecord) process() *exec.Cmd {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cmd
}
