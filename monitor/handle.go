/*
Package monitor provides the per-descriptor capability handle: a serialized
retry-until-ready loop for each direction, built on one-shot interest
registrations with the worker's poller.
*/
package monitor

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/moxista/fdready/iface"
	"github.com/moxista/fdready/utils/errs"
)

// StepFunc is one attempt at the caller's operation. done == false with a nil
// error means the operation would block and must be retried once the
// descriptor becomes ready. Results travel out through the closure.
type StepFunc func() (done bool, err error)

// Handle monitors one descriptor. Each wanted direction carries its own
// asynchronous lock so that at most one retry loop per direction is in
// flight, which in turn guarantees at most one live kernel registration per
// (descriptor, direction) key.
type Handle struct {
	fd        int
	acc       iface.PollerAccessor
	readLock  *semaphore.Weighted
	writeLock *semaphore.Weighted
	closed    int32
}

// Open acquires a monitoring handle for fd. Closing the handle releases no
// kernel state; registrations are one-shot and clear themselves.
func Open(acc iface.PollerAccessor, fd int, wantsRead, wantsWrite bool) *Handle {
	that := &Handle{fd: fd, acc: acc}
	if wantsRead {
		that.readLock = semaphore.NewWeighted(1)
	}
	if wantsWrite {
		that.writeLock = semaphore.NewWeighted(1)
	}
	return that
}

func (that *Handle) GetFd() int {
	return that.fd
}

func (that *Handle) Close() error {
	if !atomic.CompareAndSwapInt32(&that.closed, 0, 1) {
		return errs.ErrMonitorClosed
	}
	return nil
}

// DoRead runs step until it completes, suspending between attempts while
// waiting for fd to become readable. All readers of this handle are
// serialized.
func (that *Handle) DoRead(ctx context.Context, step StepFunc) error {
	return that.retryLoop(ctx, iface.Read, that.readLock, step)
}

// DoWrite is the write-direction counterpart of DoRead.
func (that *Handle) DoWrite(ctx context.Context, step StepFunc) error {
	return that.retryLoop(ctx, iface.Write, that.writeLock, step)
}

func (that *Handle) retryLoop(ctx context.Context, dir iface.Direction, lock *semaphore.Weighted, step StepFunc) error {
	if lock == nil {
		return errs.ErrUnsupportedOp
	}
	if atomic.LoadInt32(&that.closed) != 0 {
		return errs.ErrMonitorClosed
	}
	// The lock is held across the whole loop: a second caller for this
	// direction cannot submit interest while ours is still live.
	if err := lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer lock.Release(1)

	for {
		done, err := step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err = that.await(ctx, dir); err != nil {
			return err
		}
	}
}

// await registers one-shot interest with the worker's poller and parks the
// caller until the event fires, the registration errors, or ctx is
// cancelled. Cancellation removes the table entry on the owning worker, so a
// late firing for this key resumes nothing.
func (that *Handle) await(ctx context.Context, dir iface.Direction) error {
	fired := make(chan error, 1)
	err := that.acc.AddTask(func(iface.TaskArg) error {
		that.acc.Poller().SubmitInterest(that.fd, dir, 0, func(err error) {
			fired <- err
		})
		return nil
	}, nil)
	if err != nil {
		return err
	}

	select {
	case err = <-fired:
		return err
	case <-ctx.Done():
		_ = that.acc.AddTask(func(iface.TaskArg) error {
			that.acc.Poller().CancelInterest(that.fd, dir)
			return nil
		}, nil)
		return ctx.Err()
	}
}
