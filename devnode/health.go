package devnode

import (
	"os"
	"runtime"
	"time"

	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthStatus is the document served at /healthz.
type HealthStatus struct {
	UptimeSeconds uint64  `json:"uptime_seconds"`
	Devices       int     `json:"devices"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	RSSBytes      uint64  `json:"rss_bytes"`
}

// Health samples process level stats of the running daemon.
type Health struct {
	clock   mockable.Clock
	started time.Time
	proc    *process.Process
}

func NewHealth() *Health {
	h := &Health{}
	h.started = h.clock.Time()

	// Process stats are best effort; the snapshot omits them when the
	// process handle cannot be resolved.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		h.proc = proc
	}

	return h
}

func (h *Health) Snapshot(devices int) HealthStatus {
	status := HealthStatus{
		UptimeSeconds: uint64(h.clock.Time().Sub(h.started) / time.Second),
		Devices:       devices,
		Goroutines:    runtime.NumGoroutine(),
	}

	if h.proc != nil {
		if cpu, err := h.proc.CPUPercent(); err == nil {
			status.CPUPercent = cpu
		}
		if mem, err := h.proc.MemoryInfo(); err == nil && mem != nil {
			status.RSSBytes = mem.RSS
		}
	}

	return status
}
