//go:build darwin || dragonfly || freebsd

/*
Package eloop runs the single worker goroutine that owns a poller: wait for
readiness, drain continuations, run queued tasks, repeat. The loop is the
worker-local accessor through which every cross-goroutine poller mutation is
routed, which is what lets the poller itself stay lock-free.
*/
package eloop

import (
	"runtime"
	"sync/atomic"

	"github.com/moqsien/processes/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/moxista/fdready/iface"
	"github.com/moxista/fdready/poll"
	"github.com/moxista/fdready/utils/errs"
	"github.com/moxista/fdready/utils/queue"
)

type Loop struct {
	poller     *poll.Poller
	tasks      queue.TaskQueue
	priorTasks queue.TaskQueue
	toWakeup   int32
	pool       *ants.Pool
	opts       Options
	done       chan struct{}
}

var _ iface.PollerAccessor = (*Loop)(nil)

func New(options ...Option) (*Loop, error) {
	var opts Options
	for _, o := range options {
		o(&opts)
	}
	p, err := poll.New()
	if err != nil {
		return nil, err
	}
	that := &Loop{
		poller:     p,
		tasks:      queue.NewQueue(),
		priorTasks: queue.NewQueue(),
		opts:       opts,
		done:       make(chan struct{}),
	}
	if opts.PoolSize > 0 {
		if that.pool, err = ants.NewPool(opts.PoolSize); err != nil {
			p.Close()
			return nil, err
		}
	}
	return that, nil
}

// Poller returns the owned poller. It must only be touched from within a
// task scheduled on this loop.
func (that *Loop) Poller() iface.IPoller {
	return that.poller
}

// AddTask queues f to run on the loop goroutine and wakes the loop if it is
// blocked in the wait call. Safe from any goroutine.
func (that *Loop) AddTask(f iface.TaskFunc, arg iface.TaskArg) (err error) {
	task := GetTask()
	task.Go, task.Arg = f, arg
	that.tasks.Enqueue(task)
	if atomic.CompareAndSwapInt32(&that.toWakeup, 0, 1) {
		err = that.poller.Wakeup()
	}
	return
}

// AddPriorTask is AddTask for tasks that must run before the regular queue,
// such as shutdown.
func (that *Loop) AddPriorTask(f iface.TaskFunc, arg iface.TaskArg) (err error) {
	task := GetTask()
	task.Go, task.Arg = f, arg
	that.priorTasks.Enqueue(task)
	if atomic.CompareAndSwapInt32(&that.toWakeup, 0, 1) {
		err = that.poller.Wakeup()
	}
	return
}

// Submit runs f off-loop on the goroutine pool, for user work that must not
// stall the poll cycle. Without a pool it degrades to a plain goroutine.
func (that *Loop) Submit(f func()) error {
	if that.pool != nil {
		return that.pool.Submit(f)
	}
	go f()
	return nil
}

// Run drives the poller until Stop is called or a systemic poll failure
// occurs. It blocks; callers normally run it on a dedicated goroutine.
func (that *Loop) Run() error {
	if that.opts.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	defer close(that.done)
	if that.pool != nil {
		defer that.pool.Release()
	}
	for {
		if _, err := that.poller.Wait(iface.WaitForever); err != nil {
			return err
		}
		if _, err := that.poller.DrainAndDispatch(); err != nil {
			return err
		}
		switch err := that.runTasks(); err {
		case nil:
		case errs.ErrLoopShutdown:
			return that.poller.Close()
		default:
			return err
		}
	}
}

// Stop schedules shutdown and returns immediately; Done is closed once the
// loop has exited and released the poll handle.
func (that *Loop) Stop() error {
	return that.AddPriorTask(func(iface.TaskArg) error {
		return errs.ErrLoopShutdown
	}, nil)
}

func (that *Loop) Done() <-chan struct{} {
	return that.done
}

// runTasks drains the priority queue fully and up to MaxTasks regular tasks,
// then re-arms the wakeup so leftovers get another cycle instead of starving
// the poll call.
func (that *Loop) runTasks() error {
	atomic.StoreInt32(&that.toWakeup, 0)
	for t := that.priorTasks.Dequeue(); t != nil; t = that.priorTasks.Dequeue() {
		if err := that.runTask(t.(*Task)); err != nil {
			return err
		}
	}
	for i := 0; i < iface.MaxTasks; i++ {
		t := that.tasks.Dequeue()
		if t == nil {
			break
		}
		if err := that.runTask(t.(*Task)); err != nil {
			return err
		}
	}
	if (!that.tasks.IsEmpty() || !that.priorTasks.IsEmpty()) && atomic.CompareAndSwapInt32(&that.toWakeup, 0, 1) {
		return that.poller.Wakeup()
	}
	return nil
}

func (that *Loop) runTask(task *Task) error {
	err := task.Go(task.Arg)
	PutTask(task)
	switch err {
	case nil:
	case errs.ErrLoopShutdown:
		return err
	default:
		logger.Warningf("error occurs in user-defined task, %v", err)
	}
	return nil
}
