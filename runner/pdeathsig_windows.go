// +build windows

package runner

import (
	"syscall"
)

func setSysProcAttr(sysProcAttr *syscall.SysProcAttr) {
}
