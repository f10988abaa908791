//go:build windows

package cluster

import (
	"net"

	"github.com/yourusername/ecewo/kinderr"
)

const supportsReusePort = false

// ListenReusePort has no Windows equivalent of SO_REUSEPORT port sharing
// across independent processes; callers must fall back to base_port + id
// per worker.
func ListenReusePort(network, address string) (net.Listener, error) {
	return nil, kinderr.New(kinderr.Config, "cluster: SO_REUSEPORT is not available on windows")
}
