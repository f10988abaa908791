//go:build windows

package cluster

// registerRestartSignal is a no-op on Windows: graceful restart has no
// portable trigger without a SIGUSR2 equivalent.
func (s *Supervisor) registerRestartSignal() {}
