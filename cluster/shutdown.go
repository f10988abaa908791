package cluster

import "time"

// ShutdownGraceWindow is the grace period workers get to exit
// cooperatively before the survivors are sent SIGKILL.
const ShutdownGraceWindow = 30 * time.Second
