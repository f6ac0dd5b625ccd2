package services

import (
	"log"

	"botstats/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// CollectSystemInfo reads the host figures reported on /health. Disk
// usage is sampled on dataDir, the filesystem that actually has to hold
// the durable files. Each reading is best effort: a probe that fails on
// the host leaves its field zero with a warning instead of failing the
// health check.
func CollectSystemInfo(dataDir string) *models.SystemInfo {
	info := &models.SystemInfo{}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Printf("Warning: Could not get memory usage: %v", err)
	} else {
		info.MemoryUsedPercent = vm.UsedPercent
	}

	if pct, err := cpu.Percent(0, false); err != nil || len(pct) == 0 {
		log.Printf("Warning: Could not get CPU usage: %v", err)
	} else {
		info.CPUPercent = pct[0]
	}

	if du, err := disk.Usage(dataDir); err != nil {
		log.Printf("Warning: Could not get disk usage for %s: %v", dataDir, err)
	} else {
		info.DiskUsedPercent = du.UsedPercent
	}

	if up, err := host.Uptime(); err != nil {
		log.Printf("Warning: Could not get host uptime: %v", err)
	} else {
		info.HostUptimeSeconds = up
	}

	return info
}
