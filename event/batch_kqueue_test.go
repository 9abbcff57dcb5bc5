//go:build darwin || dragonfly || freebsd

package event

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/moxista/fdready/iface"
)

func TestBatchStageAndAccessors(t *testing.T) {
	b := NewBatch()
	require.Equal(t, iface.BatchCap, b.Cap())

	require.True(t, b.StageChange(7, iface.Read, 0))
	require.True(t, b.StageChange(7, iface.Write, FlagClear))
	require.Equal(t, 2, b.ChangeCount())
	require.Len(t, b.Changes(), 2)

	require.Equal(t, 7, b.Ident(0))
	require.Equal(t, int16(unix.EVFILT_READ), b.Filter(0))
	require.NotZero(t, b.Flags(0)&uint16(unix.EV_ADD))
	require.NotZero(t, b.Flags(0)&FlagOneShot)

	require.Equal(t, int16(unix.EVFILT_WRITE), b.Filter(1))
	require.NotZero(t, b.Flags(1)&FlagClear)
	require.NotZero(t, b.Flags(1)&FlagOneShot)

	key, ok := b.Key(0)
	require.True(t, ok)
	require.Equal(t, iface.Key{Fd: 7, Dir: iface.Read}, key)
	key, ok = b.Key(1)
	require.True(t, ok)
	require.Equal(t, iface.Key{Fd: 7, Dir: iface.Write}, key)

	b.ResetChanges()
	require.Zero(t, b.ChangeCount())
	require.Empty(t, b.Changes())
}

func TestBatchChangeRegionFull(t *testing.T) {
	b := NewBatch()
	for i := 0; i < iface.BatchCap; i++ {
		require.True(t, b.StageChange(i, iface.Read, 0))
	}
	require.False(t, b.StageChange(1000, iface.Read, 0))
	require.Equal(t, iface.BatchCap, b.ChangeCount())
}

func TestBatchUserEventHasNoKey(t *testing.T) {
	b := NewBatch()
	unix.SetKevent(&b.All()[0], 0, unix.EVFILT_USER, unix.EV_CLEAR)
	_, ok := b.Key(0)
	require.False(t, ok)
}

func TestBatchErrorRecord(t *testing.T) {
	b := NewBatch()
	k := &b.All()[0]
	unix.SetKevent(k, 3, unix.EVFILT_READ, unix.EV_ERROR|unix.EV_ONESHOT)
	k.Data = int64(unix.EBADF)

	require.True(t, b.IsError(0))
	require.Equal(t, unix.EBADF, b.Errno(0))
	require.Contains(t, b.Errno(0).Error(), "bad file descriptor")
	require.Equal(t, int64(unix.EBADF), b.Data(0))
}

// The receive view must be the native records laid out back to back, since
// the kernel writes into it directly.
func TestBatchLayoutIsNative(t *testing.T) {
	b := NewBatch()
	all := b.All()
	require.Len(t, all, iface.BatchCap)

	stride := uintptr(unsafe.Pointer(&all[1])) - uintptr(unsafe.Pointer(&all[0]))
	require.Equal(t, unsafe.Sizeof(unix.Kevent_t{}), stride)
	require.Equal(t, unsafe.Pointer(&b.records[0]), unsafe.Pointer(&all[0]))
}
