package iface

type IFd interface {
	GetFd() int
}

// IPoller is a single readiness poller. All mutating calls must be made from
// the one goroutine that owns the instance; the poller carries no locks of
// its own. Cross-goroutine callers go through a PollerAccessor.
type IPoller interface {
	SubmitInterest(fd int, dir Direction, kernelFlags uint16, k Continuation)
	CancelInterest(fd int, dir Direction)
	Wait(timeoutNanos int64) (bool, error)
	DrainAndDispatch() (bool, error)
	Idle() bool
	Close() error
}

// PollerAccessor routes work onto the goroutine owning a poller. Poller is
// only meaningful from within a task scheduled through AddTask.
type PollerAccessor interface {
	AddTask(f TaskFunc, arg TaskArg) error
	Poller() IPoller
}

// Monitor is the capability handle for one descriptor. Each direction runs at
// most one retry loop at a time.
type Monitor interface {
	IFd
	Close() error
}

// PollingSystem is the contract the surrounding scheduler drives a backend
// through. Interrupt and Metrics exist for backends that need them; the
// kqueue backend leaves both empty.
type PollingSystem interface {
	CreatePoller() (IPoller, error)
	DestroyPoller(p IPoller) error
	Wait(p IPoller, timeoutNanos int64) (bool, error)
	DrainAndDispatch(p IPoller) (bool, error)
	Idle(p IPoller) bool
	Interrupt(p IPoller)
	Metrics(p IPoller)
	OpenMonitor(acc PollerAccessor, fd int, wantsRead, wantsWrite bool) Monitor
}
