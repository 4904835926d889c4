// +build windows

package signals

import (
	"fmt"
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
	case "TERM":
		return syscall.SIGTERM, nil
	default:
		return nil, fmt.Errorf("invalid signal name %s", signalName)
	}
}

// Kill kills the process. Signal delivery to a process group is not
// supported on windows, the process is terminated directly.
func Kill(process *os.Process, sig os.Signal, sigChildren bool) error {
	return process.Kill()
}

// KillPid is Kill for a bare process id
func KillPid(pid int, sig os.Signal, sigChildren bool) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
