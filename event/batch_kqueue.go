//go:build darwin || dragonfly || freebsd

/*
Package event holds the native kernel record codec for the kqueue backend: a
fixed-capacity, reusable kevent buffer plus typed accessors, so the poller
never touches OS struct fields directly. A different polling backend would
substitute an analogous codec for its own native record shape; the contract
(identifier, direction, flags, error code, association tag) stays the same.
*/
package event

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/moxista/fdready/iface"
)

// Record flag masks, re-exported so callers outside this package do not need
// to import unix for them.
const (
	FlagOneShot = uint16(unix.EV_ONESHOT)
	FlagClear   = uint16(unix.EV_CLEAR)
	FlagError   = uint16(unix.EV_ERROR)
	FlagEOF     = uint16(unix.EV_EOF)
)

// Batch is the contiguous buffer of native event records. A single kevent
// call consumes records [0, changeCount) as the outgoing change list and
// refills [0, BatchCap) with ready events, so the same memory serves both
// sides of the syscall and the hot path never allocates.
type Batch struct {
	records     [iface.BatchCap]unix.Kevent_t
	changeCount int
}

func NewBatch() *Batch {
	return new(Batch)
}

func (that *Batch) Cap() int {
	return iface.BatchCap
}

// StageChange appends a one-shot interest record for the next kernel call.
// Returns false when the change region is already full; the caller must
// flush before staging more.
func (that *Batch) StageChange(fd int, dir iface.Direction, kernelFlags uint16) bool {
	if that.changeCount == iface.BatchCap {
		return false
	}
	k := &that.records[that.changeCount]
	*k = unix.Kevent_t{}
	unix.SetKevent(k, fd, int(filterFor(dir)), unix.EV_ADD|unix.EV_ONESHOT|int(kernelFlags))
	that.changeCount++
	return true
}

// Changes is the staged change list view.
func (that *Batch) Changes() []unix.Kevent_t {
	return that.records[:that.changeCount]
}

// All is the full receive view handed to the kernel as the event list.
func (that *Batch) All() []unix.Kevent_t {
	return that.records[:]
}

func (that *Batch) ChangeCount() int {
	return that.changeCount
}

// ResetChanges marks the staged changes as consumed by the kernel.
func (that *Batch) ResetChanges() {
	that.changeCount = 0
}

// Ident is the descriptor identifier of record i.
func (that *Batch) Ident(i int) int {
	return int(that.records[i].Ident)
}

// Filter is the raw filter code of record i.
func (that *Batch) Filter(i int) int16 {
	return int16(that.records[i].Filter)
}

// Flags is the raw flag bitmask of record i.
func (that *Batch) Flags(i int) uint16 {
	return uint16(that.records[i].Flags)
}

// Data is the filter-specific payload of record i. When FlagError is set it
// carries the errno for the failed registration.
func (that *Batch) Data(i int) int64 {
	return int64(that.records[i].Data)
}

// Udata is the opaque association tag of record i. The kqueue backend keys
// registrations on (ident, filter) and leaves it untouched.
func (that *Batch) Udata(i int) uintptr {
	return uintptr(unsafe.Pointer(that.records[i].Udata))
}

// Key derives the registration key of record i. ok is false for records that
// do not map to a readiness direction, such as user-event wakeups.
func (that *Batch) Key(i int) (key iface.Key, ok bool) {
	switch that.Filter(i) {
	case unix.EVFILT_READ:
		return iface.Key{Fd: that.Ident(i), Dir: iface.Read}, true
	case unix.EVFILT_WRITE:
		return iface.Key{Fd: that.Ident(i), Dir: iface.Write}, true
	}
	return key, false
}

// IsError reports whether record i carries a per-registration kernel error.
func (that *Batch) IsError(i int) bool {
	return that.Flags(i)&FlagError != 0
}

// Errno is the kernel error code of record i; meaningful only when IsError.
func (that *Batch) Errno(i int) unix.Errno {
	return unix.Errno(that.Data(i))
}

func filterFor(dir iface.Direction) int16 {
	if dir == iface.Write {
		return unix.EVFILT_WRITE
	}
	return unix.EVFILT_READ
}
