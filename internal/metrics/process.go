package metrics

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats — снимок ресурсов процесса для команды /stats
type Stats struct {
	Uptime     string  `json:"uptime"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSMB      float64 `json:"rss_mb"`
	HeapMB     float64 `json:"heap_mb"`
	Goroutines int     `json:"goroutines"`
	NumGC      uint32  `json:"num_gc"`
}

// String форматирует снимок в одну строку для консоли
func (s Stats) String() string {
	return fmt.Sprintf("uptime=%s cpu=%.1f%% rss=%.1fMB heap=%.1fMB goroutines=%d gc=%d",
		s.Uptime, s.CPUPercent, s.RSSMB, s.HeapMB, s.Goroutines, s.NumGC)
}

var startTime = time.Now()

// FormatUptime возвращает время работы в виде "1д 2ч 3м 4с"
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// ProcessStats собирает использование CPU и памяти процессом.
// Ошибки gopsutil не фатальны: недоступные значения остаются нулевыми.
func ProcessStats() (Stats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := Stats{
		Uptime:     FormatUptime(time.Since(startTime)),
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, fmt.Errorf("не удалось открыть процесс: %w", err)
	}

	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSMB = float64(mem.RSS) / 1024 / 1024
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, попробуем системную
		percents, sysErr := cpu.Percent(100*time.Millisecond, false)
		if sysErr != nil || len(percents) == 0 {
			return stats, fmt.Errorf("не удалось получить загрузку CPU: %w", err)
		}
		cpuPercent = percents[0]
	}
	stats.CPUPercent = cpuPercent

	return stats, nil
}
