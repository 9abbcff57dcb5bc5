package utils

import "os"

// SysError wraps err with the name of the failing syscall. Returns nil when
// err is nil.
func SysError(name string, err error) error {
	return os.NewSyscallError(name, err)
}
