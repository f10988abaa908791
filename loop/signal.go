package loop

import (
	"os"
	"os/signal"
)

// SignalHandle lets a caller stop watching a signal registered with
// OnSignal.
type SignalHandle struct {
	ch   chan os.Signal
	stop chan struct{}
}

// Stop unregisters the signal watch and releases its goroutine.
func (h *SignalHandle) Stop() {
	signal.Stop(h.ch)
	close(h.stop)
}

// OnSignal marshals delivery of sig onto the loop goroutine: a dedicated
// goroutine receives from the OS signal channel (the only thing Go permits
// inside true signal delivery) and posts cb to the loop via Post, so cb
// always runs serialized with every other loop callback. Handlers may
// therefore invoke ordinary loop primitives freely; the marshalling is
// what makes that safe.
func (l *Loop) OnSignal(cb func(os.Signal), sigs ...os.Signal) *SignalHandle {
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, sigs...)

	h := &SignalHandle{ch: ch, stop: make(chan struct{})}
	go func() {
		for {
			select {
			case sig := <-ch:
				l.Post(func() { cb(sig) })
			case <-h.stop:
				return
			}
		}
	}()
	return h
}
