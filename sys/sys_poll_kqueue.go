//go:build darwin || dragonfly || freebsd

package sys

import (
	"golang.org/x/sys/unix"

	"github.com/moxista/fdready/utils"
)

const (
	kSysCreate = "kqueue"
	kSysWait   = "kevent_wait"
	kSysWakeup = "kevent_wakeup"
)

// wakeupIdent is the ident of the user event registered at creation so a
// blocked wait can be woken from another goroutine.
const wakeupIdent = 0

// CreatePoll opens a kqueue handle and registers the wakeup user event on it.
func CreatePoll() (pollFd int, err error) {
	pollFd, err = unix.Kqueue()
	if err != nil {
		return -1, utils.SysError(kSysCreate, err)
	}
	unix.CloseOnExec(pollFd)

	_, err = unix.Kevent(pollFd, []unix.Kevent_t{{
		Ident:  wakeupIdent,
		Filter: unix.EVFILT_USER,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}}, nil, nil)
	if err != nil {
		unix.Close(pollFd)
		return -1, utils.SysError(kSysWakeup, err)
	}
	return pollFd, nil
}

// Trigger fires the wakeup user event, forcing a blocked KeventWait on the
// same handle to return.
func Trigger(pollFd int) error {
	_, err := unix.Kevent(pollFd, []unix.Kevent_t{{
		Ident:  wakeupIdent,
		Filter: unix.EVFILT_USER,
		Fflags: unix.NOTE_TRIGGER,
	}}, nil, nil)
	return utils.SysError(kSysWakeup, err)
}

// KeventWait is the single batched submit-and-retrieve call: changes are
// flushed to the kernel and ready records are written into events within the
// same syscall. timeoutNanos < 0 blocks until an event or a signal, 0 polls
// without blocking, > 0 bounds the wait. A signal interruption is reported as
// zero ready records, not as an error.
func KeventWait(pollFd int, changes, events []unix.Kevent_t, timeoutNanos int64) (int, error) {
	var tsp *unix.Timespec
	if timeoutNanos >= 0 {
		ts := unix.NsecToTimespec(timeoutNanos)
		tsp = &ts
	}
	n, err := unix.Kevent(pollFd, changes, events, tsp)
	if err == unix.EINTR {
		return 0, nil
	}
	if err != nil {
		return 0, utils.SysError(kSysWait, err)
	}
	return n, nil
}
