// +build !windows

package signals

import (
	"syscall"
	"testing"
)

func TestToSignal(t *testing.T) {
	sig, err := ToSignal("HUP")
	if err != nil || sig != syscall.SIGHUP {
		t.Error("fail to convert the signal name HUP")
	}
	sig, err = ToSignal("KILL")
	if err != nil || sig != syscall.SIGKILL {
		t.Error("fail to convert the signal name KILL")
	}
	sig, err = ToSignal("NO-SUCH-SIGNAL")
	if err != nil || sig != syscall.SIGTERM {
		t.Error("unknown signal name should fall back to TERM")
	}
}
