//go:build linux

package scheduler

import "golang.org/x/sys/unix"

// setThreadPriorityHint maps the task priority to an OS niceness for the
// worker's locked thread. Raising priority needs privileges the process
// usually does not have; failure is silent because the hint is best-effort
// by contract.
func setThreadPriorityHint(p Priority) {
	_ = unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), niceFor(p))
}

func niceFor(p Priority) int {
	switch p {
	case PriorityIdle:
		return 19
	case PriorityLow:
		return 10
	case PriorityHigh:
		return -5
	case PriorityCritical:
		return -10
	default:
		return 0
	}
}
