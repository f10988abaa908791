package loop

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is the single-threaded event loop owned by one worker process. All
// readiness callbacks, timers, and signal-marshalled callbacks registered
// with it run on the loop's own goroutine, never concurrently with each
// other.
type Loop struct {
	poller Poller

	timersMu sync.Mutex
	timers   timerHeap

	// ingress lets other goroutines (a cluster worker's os/exec.Wait
	// goroutine, os/signal) hand
	// work to the loop thread without it ever touching their state
	// directly.
	ingress chan func()

	running atomic.Bool
	stopCh  chan struct{}
	done    chan struct{}

	asyncWork atomic.Int64
}

// New builds a Loop with the platform's primary poller.
func New() (*Loop, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Loop{
		poller:  p,
		ingress: make(chan func(), 256),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// RegisterFD registers fd for the given readiness events. cb runs on the
// loop goroutine.
func (l *Loop) RegisterFD(fd int, events IOEvents, cb IOCallback) error {
	return l.poller.Add(fd, events, cb)
}

// ModifyFD changes the readiness events a registered fd is watched for.
func (l *Loop) ModifyFD(fd int, events IOEvents) error {
	return l.poller.Modify(fd, events)
}

// UnregisterFD stops watching fd. Callers must do this before closing the
// underlying fd to avoid stale event delivery.
func (l *Loop) UnregisterFD(fd int) error {
	return l.poller.Remove(fd)
}

// Post hands fn to the loop goroutine for execution on its next turn. Safe
// to call from any goroutine, including one not owned by this loop.
func (l *Loop) Post(fn func()) {
	select {
	case l.ingress <- fn:
	case <-l.done:
		// Loop has stopped; drop the work rather than block forever.
	}
}

// Running reports whether the loop is currently executing its Run loop.
// Subsystems must consult this in every callback and bail out if false.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// IncrementAsyncWork bumps the process-local outstanding-work counter the
// shutdown barrier consults before stopping the loop.
func (l *Loop) IncrementAsyncWork() { l.asyncWork.Add(1) }

// DecrementAsyncWork drops the outstanding-work counter.
func (l *Loop) DecrementAsyncWork() { l.asyncWork.Add(-1) }

// AsyncWork reports the current outstanding-work count.
func (l *Loop) AsyncWork() int64 { return l.asyncWork.Load() }

// timerEntry is one scheduled callback.
type timerEntry struct {
	at       time.Time
	interval time.Duration // 0 for one-shot
	cb       func()
	index    int
	cancel   bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) { e := x.(*timerEntry); e.index = len(*h); *h = append(*h, e) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Timer is a handle returned by AddTimer/AddInterval that can be stopped.
type Timer struct {
	entry *timerEntry
	loop  *Loop
}

// Stop cancels the timer. Safe to call more than once.
func (t *Timer) Stop() {
	t.loop.timersMu.Lock()
	t.entry.cancel = true
	t.loop.timersMu.Unlock()
}

// AddTimer schedules cb to run once after d elapses.
func (l *Loop) AddTimer(d time.Duration, cb func()) *Timer {
	e := &timerEntry{at: time.Now().Add(d), cb: cb}
	l.timersMu.Lock()
	heap.Push(&l.timers, e)
	l.timersMu.Unlock()
	return &Timer{entry: e, loop: l}
}

// AddInterval schedules cb to run every d, starting after the first d
// elapses. Used by the DB bridge's compatibility timer path.
func (l *Loop) AddInterval(d time.Duration, cb func()) *Timer {
	e := &timerEntry{at: time.Now().Add(d), interval: d, cb: cb}
	l.timersMu.Lock()
	heap.Push(&l.timers, e)
	l.timersMu.Unlock()
	return &Timer{entry: e, loop: l}
}

// fireDueTimers runs and reschedules any timers already due, then returns
// how many milliseconds until the next timer fires, or -1 when there are
// none.
func (l *Loop) fireDueTimers() int {
	l.timersMu.Lock()
	var due []*timerEntry
	now := time.Now()
	for l.timers.Len() > 0 && l.timers[0].at.Before(now) {
		e := heap.Pop(&l.timers).(*timerEntry)
		if e.cancel {
			continue
		}
		due = append(due, e)
		if e.interval > 0 {
			e.at = now.Add(e.interval)
			heap.Push(&l.timers, e)
		}
	}
	var timeoutMs int
	if l.timers.Len() == 0 {
		timeoutMs = -1
	} else {
		d := l.timers[0].at.Sub(time.Now())
		if d < 0 {
			d = 0
		}
		timeoutMs = int(d / time.Millisecond)
	}
	l.timersMu.Unlock()

	for _, e := range due {
		e.cb()
	}
	if timeoutMs < 0 {
		return -1
	}
	if timeoutMs > 1000 {
		timeoutMs = 1000 // keep Poll responsive to Stop()/ingress
	}
	return timeoutMs
}

// Run executes the loop until Stop is called. It is intended to be called
// once, from the goroutine that should act as "the loop thread" for the
// lifetime of the worker process.
func (l *Loop) Run() {
	l.running.Store(true)
	defer func() {
		l.running.Store(false)
		close(l.done)
	}()

	for {
		select {
		case <-l.stopCh:
			l.drainIngress()
			return
		default:
		}

		l.drainIngress()

		timeout := l.fireDueTimers()
		if timeout < 0 {
			timeout = 50 // idle poll so Stop()/ingress stay responsive
		}
		_ = l.poller.Poll(timeout)
	}
}

func (l *Loop) drainIngress() {
	for {
		select {
		case fn := <-l.ingress:
			fn()
		default:
			return
		}
	}
}

// Stop requests the loop to exit its Run method on its next turn.
func (l *Loop) Stop() {
	if !l.running.Load() {
		return
	}
	select {
	case <-l.stopCh:
	default:
		close(l.stopCh)
	}
}

// Done returns a channel closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Close releases the loop's poller. Call after Run has returned.
func (l *Loop) Close() error {
	return l.poller.Close()
}
