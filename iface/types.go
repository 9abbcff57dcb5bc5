package iface

// Direction is the interest direction of a registration.
type Direction int8

const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}
	return "read"
}

// Key identifies one live registration: at most one continuation may wait on
// a given (descriptor, direction) pair at any time.
type Key struct {
	Fd  int
	Dir Direction
}

// Continuation resumes a suspended computation. It is invoked exactly once:
// with nil when the awaited readiness event fired, or with the kernel-reported
// error for that registration.
type Continuation func(err error)

type TaskArg interface{}

type TaskFunc func(arg TaskArg) error
