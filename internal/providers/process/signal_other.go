//go:build !darwin && !linux && !freebsd && !netbsd && !openbsd

package process

import (
	"errors"
	"os"
)

// There is no graceful signal outside unix; both kinds kill.
func sendSignal(pid int, sig Signal) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// SuspendParent is unsupported on this platform.
func SuspendParent() (resume func() error, err error) {
	return nil, errors.New("suspending the parent process is not supported on this platform")
}
