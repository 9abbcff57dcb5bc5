package errs

import "errors"

var (
	ErrLoopShutdown  = errors.New("event loop is going to be shutdown")
	ErrMonitorClosed = errors.New("monitor has been closed")
	ErrUnsupportedOp = errors.New("unsupported operation")
)
