/*
Package sys wraps the raw kernel boundary of the polling engine. Everything
above it works with the codec views from package event and never issues a
syscall of its own.
*/
package sys

import "golang.org/x/sys/unix"

func CloseFd(fd int) error {
	return unix.Close(fd)
}
