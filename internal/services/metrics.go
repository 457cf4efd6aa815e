package services

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

var (
	systemMemoryUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_system_memory_used_bytes",
		Help: "Host memory in use at the last sample.",
	})
	systemCPULoad = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_system_cpu_load_ratio",
		Help: "Host CPU load between 0 and 1 at the last sample.",
	})
	processRSS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_process_rss_bytes",
		Help: "Resident memory of the server process at the last sample.",
	})
	diskUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_disk_used_bytes",
		Help: "Used bytes on the sampled disk.",
	})
)

type MetricSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
}

// CaptureMetrics samples host and process usage. Probes that fail leave
// their fields at zero; diskPath falls back to "/".
func CaptureMetrics(diskPath string) MetricSample {
	sample := MetricSample{CapturedAt: time.Now().UTC()}
	if memStat, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(diskStat.Total)
		sample.DiskUsedBytes = int64(diskStat.Used)
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if perc, err := proc.CPUPercent(); err == nil {
			sample.ProcessCpuLoad = perc / 100.0
		}
	}
	if sysCPU, err := cpu.Percent(0, false); err == nil && len(sysCPU) > 0 {
		sample.SystemCpuLoad = sysCPU[0] / 100.0
	}
	return sample
}

func recordSample(sample MetricSample) {
	systemMemoryUsed.Set(float64(sample.SystemMemoryUsed))
	systemCPULoad.Set(sample.SystemCpuLoad)
	processRSS.Set(float64(sample.ProcessRSSBytes))
	diskUsed.Set(float64(sample.DiskUsedBytes))
}

// MetricsHub fans samples out to the admin dashboard sockets and remembers
// the most recent one.
type MetricsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	latest  *MetricSample
	ch      chan MetricSample
}

func NewMetricsHub() *MetricsHub {
	return &MetricsHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan MetricSample, 16),
	}
}

func (h *MetricsHub) Run(ctx context.Context) {
	for {
		select {
		case sample := <-h.ch:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(sample); err != nil {
					log.Debug().Err(err).Msg("dropping metrics client")
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.Close()
			}
			h.clients = map[*websocket.Conn]bool{}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast records sample and queues it for connected clients. A full
// queue drops the sample rather than blocking the sampler.
func (h *MetricsHub) Broadcast(sample MetricSample) {
	recordSample(sample)
	h.mu.Lock()
	h.latest = &sample
	h.mu.Unlock()
	select {
	case h.ch <- sample:
	default:
	}
}

func (h *MetricsHub) Latest() (MetricSample, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return MetricSample{}, false
	}
	return *h.latest, true
}

func (h *MetricsHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *MetricsHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *MetricsHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SampleLoop captures a sample every interval until ctx ends.
func SampleLoop(ctx context.Context, hub *MetricsHub, diskPath string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	hub.Broadcast(CaptureMetrics(diskPath))
	for {
		select {
		case <-ticker.C:
			hub.Broadcast(CaptureMetrics(diskPath))
		case <-ctx.Done():
			return
		}
	}
}
