//go:build darwin || dragonfly || freebsd

package eloop

type Options struct {
	// PoolSize caps the goroutine pool backing Submit. Zero disables the
	// pool; Submit then falls back to a plain goroutine.
	PoolSize int
	// LockOSThread pins the loop goroutine to its OS thread.
	LockOSThread bool
}

type Option func(*Options)

func WithPoolSize(n int) Option {
	return func(o *Options) {
		o.PoolSize = n
	}
}

func WithLockOSThread() Option {
	return func(o *Options) {
		o.LockOSThread = true
	}
}
