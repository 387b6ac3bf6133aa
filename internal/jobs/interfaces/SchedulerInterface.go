package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	// RunNow starts the named job in the background unless it is already
	// running. It reports whether a run was started.
	RunNow(job string) bool
}
