package runner

import (
	"os"

	ps "github.com/mitchellh/go-ps"
	"github.com/ochinchina/gotox/signals"
	log "github.com/sirupsen/logrus"
)

// killProcessTree signals the process, its process group and any
// descendant that detached itself from the group
func killProcessTree(process *os.Process, sig os.Signal) {
	err := signals.Kill(process, sig, true)
	if err != nil {
		log.WithFields(log.Fields{"pid": process.Pid, log.ErrorKey: err}).Warn("fail to kill the process group")
	}
	for _, child := range descendantsOf(process.Pid) {
		if err := signals.KillPid(child, sig, false); err != nil && !os.IsNotExist(err) {
			log.WithFields(log.Fields{"pid": child, log.ErrorKey: err}).Debug("fail to kill the descendant process")
		}
	}
}

// descendantsOf returns the pids of all the transitive children of pid
func descendantsOf(pid int) []int {
	procs, err := ps.Processes()
	if err != nil {
		return nil
	}
	children := make(map[int][]int)
	for _, proc := range procs {
		children[proc.PPid()] = append(children[proc.PPid()], proc.Pid())
	}

	result := make([]int, 0)
	pending := []int{pid}
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		for _, child := range children[cur] {
			result = append(result, child)
			pending = append(pending, child)
		}
	}
	return result
}
