package sim

import (
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// findTarget picks a real process on the host for the simulated attach, so
// status output shows a PID that actually exists. It prefers an interpreter
// process and falls back to the simulator itself.
func findTarget() (int, string) {
	procs, err := process.Processes()
	if err == nil {
		for _, p := range procs {
			name, err := p.Name()
			if err != nil {
				continue
			}
			lower := strings.ToLower(name)
			if strings.HasPrefix(lower, "python") || strings.HasPrefix(lower, "node") {
				return int(p.Pid), name
			}
		}
	}
	return os.Getpid(), "sim-server"
}
