//go:build darwin || dragonfly || freebsd

package eloop

import (
	"sync"

	"github.com/moxista/fdready/iface"
)

type Task struct {
	Go  iface.TaskFunc
	Arg iface.TaskArg
}

var taskPool = sync.Pool{
	New: func() interface{} {
		return &Task{}
	},
}

func GetTask() *Task {
	return taskPool.Get().(*Task)
}

func PutTask(t *Task) {
	t.Go, t.Arg = nil, nil
	taskPool.Put(t)
}
