//go:build darwin || linux || freebsd || netbsd || openbsd

package process

import (
	"os"
	"syscall"
)

func sendSignal(pid int, sig Signal) error {
	if sig == Forceful {
		return syscall.Kill(pid, syscall.SIGKILL)
	}
	return syscall.Kill(pid, syscall.SIGTERM)
}

// SuspendParent stops the parent process until the returned function is
// called.
func SuspendParent() (resume func() error, err error) {
	parent := os.Getppid()
	if err := syscall.Kill(parent, syscall.SIGSTOP); err != nil {
		return nil, err
	}
	return func() error {
		return syscall.Kill(parent, syscall.SIGCONT)
	}, nil
}
