//go:build darwin || dragonfly || freebsd

package poll

import (
	"github.com/moxista/fdready/iface"
	"github.com/moxista/fdready/monitor"
)

// System adapts the kqueue poller to the generic polling-system contract
// consumed by a surrounding scheduler.
type System struct{}

var _ iface.PollingSystem = System{}

func NewSystem() iface.PollingSystem {
	return System{}
}

func (System) CreatePoller() (iface.IPoller, error) {
	return New()
}

func (System) DestroyPoller(p iface.IPoller) error {
	return p.Close()
}

func (System) Wait(p iface.IPoller, timeoutNanos int64) (bool, error) {
	return p.Wait(timeoutNanos)
}

func (System) DrainAndDispatch(p iface.IPoller) (bool, error) {
	return p.DrainAndDispatch()
}

func (System) Idle(p iface.IPoller) bool {
	return p.Idle()
}

// Interrupt is empty for this backend: a blocked wait is already externally
// wakeable through the poller's user event, and the scheduler bounds its own
// timeouts.
func (System) Interrupt(p iface.IPoller) {}

// Metrics is a placeholder; this backend exposes none.
func (System) Metrics(p iface.IPoller) {}

func (System) OpenMonitor(acc iface.PollerAccessor, fd int, wantsRead, wantsWrite bool) iface.Monitor {
	return monitor.Open(acc, fd, wantsRead, wantsWrite)
}
