package cluster

// SupportsReusePort reports whether this platform can share one listening
// port across independently-spawned worker processes via SO_REUSEPORT.
// Where false, workerPort falls back to base_port + id.
func SupportsReusePort() bool { return supportsReusePort }
