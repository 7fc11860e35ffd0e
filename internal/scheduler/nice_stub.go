//go:build !linux

package scheduler

// The platform offers no per-thread niceness hint we can reach portably;
// skipping the hint is correct behavior, not an omission.
func setThreadPriorityHint(Priority) {}
