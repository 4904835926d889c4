// +build linux

package runner

import (
	"syscall"
)

func setSysProcAttr(sysProcAttr *syscall.SysProcAttr) {
	sysProcAttr.Setpgid = true
	sysProcAttr.Pdeathsig = syscall.SIGKILL
}
