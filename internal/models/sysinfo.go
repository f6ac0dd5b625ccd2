package models

// SystemInfo is the host-level block of the health payload. Disk usage
// is measured on the filesystem holding the durable data files.
type SystemInfo struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
	DiskUsedPercent   float64 `json:"disk_used_percent"`
	HostUptimeSeconds uint64  `json:"host_uptime_seconds"`
}
