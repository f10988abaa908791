// Package cluster implements a master/worker process supervisor:
// argv-sentinel role detection, worker spawning via os/exec (Go has no safe
// fork() for a process already running goroutines), SO_REUSEPORT port
// sharing where the platform supports it, respawn throttling, and
// cooperative shutdown / graceful restart driven by OS signals marshalled
// onto the event loop.
package cluster

import (
	"os"
	"path/filepath"
	"strconv"
)

// sentinelFlag marks a process as a worker; the full sentinel triple is
// --cluster-worker <id> <port>.
const sentinelFlag = "--cluster-worker"

// Role is which half of the supervisor a process is playing.
type Role int

const (
	RoleMaster Role = iota
	RoleWorker
)

// DetectRole scans argv (conventionally os.Args[1:]) for the sentinel
// triple. If found, it returns RoleWorker along with the parsed id/port and
// argv with the triple stripped out — stripping makes a later restart
// idempotent, since buildWorkerArgv always appends a fresh triple rather
// than trusting one already present. A worker also gets its process title
// set to "<program>:worker-<id>", the counterpart of the master's
// "<program>:master". If the sentinel is absent, DetectRole returns
// RoleMaster and argv unchanged.
func DetectRole(argv []string) (role Role, id int, port int, rest []string) {
	for i := 0; i+3 <= len(argv); i++ {
		if argv[i] != sentinelFlag {
			continue
		}
		parsedID, errID := strconv.Atoi(argv[i+1])
		parsedPort, errPort := strconv.Atoi(argv[i+2])
		if errID != nil || errPort != nil {
			break
		}
		out := make([]string, 0, len(argv)-3)
		out = append(out, argv[:i]...)
		out = append(out, argv[i+3:]...)
		setProcTitle(filepath.Base(os.Args[0]) + ":worker-" + argv[i+1])
		return RoleWorker, parsedID, parsedPort, out
	}
	return RoleMaster, 0, 0, append([]string(nil), argv...)
}

// buildWorkerArgv constructs a worker's argv: resolved executable path as
// argv[0], every non-sentinel master argument, then a fresh sentinel
// triple for id/port.
func buildWorkerArgv(execPath string, masterArgv []string, id, port int) []string {
	argv := make([]string, 0, len(masterArgv)+4)
	argv = append(argv, execPath)
	for i := 0; i < len(masterArgv); i++ {
		if masterArgv[i] == sentinelFlag && i+2 < len(masterArgv) {
			i += 2
			continue
		}
		argv = append(argv, masterArgv[i])
	}
	argv = append(argv, sentinelFlag, strconv.Itoa(id), strconv.Itoa(port))
	return argv
}
