package overlay

import (
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// logHostInfo identifies the process the overlay woke up inside. Injected
// code has no argv of its own, so this is often the only record of which
// host a log file belongs to.
func logHostInfo(log *slog.Logger) {
	pid := os.Getpid()
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		log.Info("overlay: host process", "pid", pid)
		return
	}
	name, _ := p.Name()
	exe, _ := p.Exe()
	log.Info("overlay: host process", "pid", pid, "name", name, "exe", exe)
}
