// +build !linux,!windows

package runner

import (
	"syscall"
)

func setSysProcAttr(sysProcAttr *syscall.SysProcAttr) {
	sysProcAttr.Setpgid = true
}
