//go:build !windows

package cluster

import (
	"os"
	"syscall"
)

// registerRestartSignal wires SIGUSR2 as the graceful-restart trigger.
// SIGUSR2 has no Windows analogue.
func (s *Supervisor) registerRestartSignal() {
	s.sigHandles = append(s.sigHandles, s.lp.OnSignal(func(os.Signal) {
		s.requestGracefulRestart()
	}, syscall.SIGUSR2))
}
