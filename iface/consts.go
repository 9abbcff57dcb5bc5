package iface

const (
	// BatchCap is the fixed capacity of the kernel record buffer. One wait
	// call shares it between the outgoing change list and the incoming
	// ready list, so no single call ever touches more than BatchCap records.
	BatchCap = 64

	MaxTasks int = 256
)

// Timeout sentinels for Wait, in nanoseconds. Negative blocks until an event
// or a signal, zero polls and returns immediately, positive bounds the wait.
const (
	WaitForever   int64 = -1
	WaitImmediate int64 = 0
)
