package cluster

// setProcTitle is a best-effort process-title setter. Go has no portable
// equivalent of overwriting argv[0]'s backing memory (the common trick on Linux is
// unsafe and fragile across Go versions' runtime internals), so this
// writes the title to /proc/self/comm on Linux — visible to plain `pgrep`,
// `ps -o comm` and `/proc/<pid>/comm` but, unlike a real argv rewrite, not
// to `pgrep -f` or `ps aux`'s command column — and is a no-op everywhere
// else. Failures are ignored, never fatal: a missing process title does
// not affect correctness.
func setProcTitle(title string) {
	setProcTitlePlatform(title)
}
