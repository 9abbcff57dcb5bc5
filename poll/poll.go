//go:build darwin || dragonfly || freebsd

/*
Package poll implements the kqueue readiness poller: one-shot interest
registration, the batched wait call, and the drain step that resumes the
continuations waiting on each (descriptor, direction) key.

A Poller is owned by exactly one goroutine. None of its methods lock; callers
on other goroutines must route through the owner, normally via eloop tasks.
*/
package poll

import (
	"github.com/moqsien/processes/logger"
	"golang.org/x/sys/unix"

	"github.com/moxista/fdready/event"
	"github.com/moxista/fdready/iface"
	"github.com/moxista/fdready/sys"
	"github.com/moxista/fdready/utils"
)

const kSysDispatch = "kevent"

// keventFunc is the kernel call shape; tests substitute a stub.
type keventFunc func(pollFd int, changes, events []unix.Kevent_t, timeoutNanos int64) (int, error)

type Poller struct {
	pollFd  int
	batch   *event.Batch
	nready  int
	waiting map[iface.Key]iface.Continuation
	kevent  keventFunc
}

// New opens the kernel poll handle. The returned Poller is bound to whichever
// goroutine drives it.
func New() (*Poller, error) {
	fd, err := sys.CreatePoll()
	if err != nil {
		return nil, err
	}
	return &Poller{
		pollFd:  fd,
		batch:   event.NewBatch(),
		waiting: make(map[iface.Key]iface.Continuation),
		kevent:  sys.KeventWait,
	}, nil
}

func (that *Poller) GetFd() int {
	return that.pollFd
}

// SubmitInterest stages a one-shot registration for (fd, dir) and records k
// as its waiting continuation. No syscall is made here; the staged change is
// applied by the next Wait. A continuation already registered under the same
// key is overwritten, so concurrent submitters for one key must be serialized
// by the caller (the monitor handle's per-direction lock does this).
func (that *Poller) SubmitInterest(fd int, dir iface.Direction, kernelFlags uint16, k iface.Continuation) {
	if !that.batch.StageChange(fd, dir, kernelFlags) {
		that.flushChanges()
		that.batch.StageChange(fd, dir, kernelFlags)
	}
	that.waiting[iface.Key{Fd: fd, Dir: dir}] = k
}

// CancelInterest drops the continuation waiting on (fd, dir), if any. No
// kernel call is needed: the registration is one-shot and clears itself, and
// a later firing for the removed key finds no entry and is discarded.
func (that *Poller) CancelInterest(fd int, dir iface.Direction) {
	delete(that.waiting, iface.Key{Fd: fd, Dir: dir})
}

// flushChanges applies the staged change list early when it has filled up
// between two Wait calls. Per-registration failures surface later as error
// records against their own keys; a wholesale failure here leaves nothing to
// attribute them to, so it is only logged.
func (that *Poller) flushChanges() {
	if _, err := that.kevent(that.pollFd, that.batch.Changes(), nil, iface.WaitImmediate); err != nil {
		logger.Warningf("change flush failed: %v", err)
	}
	that.batch.ResetChanges()
}

// Wait performs the single batched kernel call: staged interest changes go
// out and ready records come back in the same reused buffer, at most
// BatchCap of them. Reports whether at least one record became ready; the
// records themselves are consumed by the next DrainAndDispatch.
func (that *Poller) Wait(timeoutNanos int64) (bool, error) {
	n, err := that.kevent(that.pollFd, that.batch.Changes(), that.batch.All(), timeoutNanos)
	if err != nil {
		return false, err
	}
	that.batch.ResetChanges()
	that.nready = n
	return n > 0, nil
}

// DrainAndDispatch matches every record produced by the last Wait to its
// waiting continuation and resumes it: with nil on readiness, or with the
// kernel-reported error when the record's error flag is set. The table entry
// is removed before the continuation runs, so nothing fires twice. Records
// with no entry (cancelled or stale) are discarded. A full batch means more
// events may already be pending, so the buffer is refilled with a
// non-blocking fetch until a short round; the populated count is always zero
// on return. Reports whether any continuation was resumed.
func (that *Poller) DrainAndDispatch() (bool, error) {
	dispatched := false
	for {
		n := that.nready
		that.nready = 0
		for i := 0; i < n; i++ {
			key, ok := that.batch.Key(i)
			if !ok {
				// wakeup user events and foreign filters
				continue
			}
			k, live := that.waiting[key]
			if !live {
				continue
			}
			delete(that.waiting, key)
			if that.batch.IsError(i) {
				k(utils.SysError(kSysDispatch, that.batch.Errno(i)))
			} else {
				k(nil)
			}
			dispatched = true
		}
		if n < that.batch.Cap() {
			return dispatched, nil
		}
		m, err := that.kevent(that.pollFd, nil, that.batch.All(), iface.WaitImmediate)
		if err != nil {
			return dispatched, err
		}
		if m == 0 {
			return dispatched, nil
		}
		that.nready = m
	}
}

// Idle reports whether the poller still has waiting registrations or
// undrained records, i.e. whether its owner must keep driving it.
func (that *Poller) Idle() bool {
	return len(that.waiting) > 0 || that.nready != 0
}

// Wakeup forces a concurrently blocked Wait on this poller to return. It is
// the only method safe to call from outside the owning goroutine.
func (that *Poller) Wakeup() error {
	return sys.Trigger(that.pollFd)
}

// Close releases the kernel poll handle. A second Close fails: the handle is
// gone.
func (that *Poller) Close() error {
	if err := utils.SysError("kqueue_close", sys.CloseFd(that.pollFd)); err != nil {
		return err
	}
	that.pollFd = -1
	return nil
}
