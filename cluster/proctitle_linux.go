//go:build linux

package cluster

import "os"

func setProcTitlePlatform(title string) {
	// Best-effort; see setProcTitle's doc comment for why this isn't a
	// real argv[0] rewrite.
	_ = os.WriteFile("/proc/self/comm", []byte(title), 0)
}
