// +build !windows

package signals

import (
	"os"
	"syscall"
)

// ToSignal convert a signal name to signal
func ToSignal(signalName string) (os.Signal, error) {
	switch signalName {
	case "HUP":
		return syscall.SIGHUP, nil
	case "INT":
		return syscall.SIGINT, nil
	case "QUIT":
		return syscall.SIGQUIT, nil
	case "KILL":
		return syscall.SIGKILL, nil
	case "USR1":
		return syscall.SIGUSR1, nil
	case "USR2":
		return syscall.SIGUSR2, nil
	default:
		return syscall.SIGTERM, nil
	}
}

// Kill sends signal to the process and, if sigChildren is true, to its
// whole process group. The caller must have started the process with
// Setpgid for the group delivery to reach the children.
func Kill(process *os.Process, sig os.Signal, sigChildren bool) error {
	localSig := sig.(syscall.Signal)
	pid := process.Pid
	if sigChildren {
		pid = -pid
	}
	return syscall.Kill(pid, localSig)
}

// KillPid is Kill for a bare process id
func KillPid(pid int, sig os.Signal, sigChildren bool) error {
	localSig := sig.(syscall.Signal)
	if sigChildren {
		pid = -pid
	}
	return syscall.Kill(pid, localSig)
}
