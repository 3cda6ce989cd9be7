package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	DatabaseMB    float64 `json:"database_mb"`
	ProductCount  int     `json:"product_count"`
	SnapshotCount int     `json:"snapshot_count"`
}

// handleSystemStatus returns process and host health alongside store sizes.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := s.systemStats()

	response := SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: time.Since(s.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
	}

	if size, err := s.db.SizeBytes(); err == nil {
		response.DatabaseMB = float64(size) / 1024 / 1024
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&response.ProductCount); err != nil {
		s.log.Warn().Err(err).Msg("Failed to count products")
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&response.SnapshotCount); err != nil {
		s.log.Warn().Err(err).Msg("Failed to count snapshots")
	}

	s.writeJSON(w, http.StatusOK, response)
}

// systemStats returns CPU and RAM usage percentages. The CPU sample uses a
// short window so the endpoint stays fast.
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
