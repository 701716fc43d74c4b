package core

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// workerMemoryUsage 单个工作器的内存消耗估计值
const workerMemoryUsage = 100 * 1024 * 1024

// ResourceMonitor 系统资源监控器
// 周期性采样内存和CPU,用于在批次派发前收紧并发工作器数
type ResourceMonitor struct {
	safetyReserve int64
	cpuLoadLimit  float64
	totalMemory   uint64

	mu           sync.RWMutex
	lastMemStats runtime.MemStats
	lastCPUUsage float64

	cancelFunc context.CancelFunc
	isRunning  bool
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(safetyReserveMB int, cpuLoadLimit float64) *ResourceMonitor {
	vmStat, err := mem.VirtualMemory()
	var totalMem uint64
	if err != nil {
		utils.Warnf("获取系统内存失败,使用默认值4GB: %v", err)
		totalMem = 4 * 1024 * 1024 * 1024
	} else {
		totalMem = vmStat.Total
		utils.Debugf("系统总内存: %.2f GB", float64(totalMem)/(1024*1024*1024))
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &ResourceMonitor{
		safetyReserve: int64(safetyReserveMB) * 1024 * 1024,
		cpuLoadLimit:  cpuLoadLimit,
		totalMemory:   totalMem,
		lastMemStats:  memStats,
	}
}

// StartMonitoring 启动后台采样goroutine,重复调用幂等
func (rm *ResourceMonitor) StartMonitoring(interval time.Duration) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rm.cancelFunc = cancel
	rm.isRunning = true

	go rm.monitoringLoop(ctx, interval)
}

func (rm *ResourceMonitor) monitoringLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)

			cpuUsage := sampleCPUUsage()

			rm.mu.Lock()
			rm.lastMemStats = memStats
			rm.lastCPUUsage = cpuUsage
			rm.mu.Unlock()
		}
	}
}

// sampleCPUUsage 采样所有核心的平均CPU使用率(百分比)
func sampleCPUUsage() float64 {
	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percentages) == 0 {
		return 0.0
	}
	return percentages[0]
}

// StopMonitoring 停止后台采样
func (rm *ResourceMonitor) StopMonitoring() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.isRunning && rm.cancelFunc != nil {
		rm.cancelFunc()
		rm.isRunning = false
		rm.cancelFunc = nil
	}
}

// ClampWorkers 根据可用内存和CPU负载收紧请求的工作器数
// 至少保证1个工作器,资源充足时原样返回requested
func (rm *ResourceMonitor) ClampWorkers(requested int) int {
	rm.mu.RLock()
	memStats := rm.lastMemStats
	cpuUsage := rm.lastCPUUsage
	rm.mu.RUnlock()

	available := int64(rm.totalMemory) - int64(memStats.Alloc) - rm.safetyReserve

	// 可用内存耗尽(含安全预留吞掉全部内存)是最需要收紧的状态
	maxByMemory := 1
	if available > 0 {
		maxByMemory = int(available / workerMemoryUsage)
		if maxByMemory < 1 {
			maxByMemory = 1
		}
	}

	result := requested
	if maxByMemory < result {
		result = maxByMemory
		utils.Warnf("可用内存受限,并发工作器收紧至%d个", result)
	}

	if rm.cpuLoadLimit > 0 && cpuUsage > rm.cpuLoadLimit {
		result = result / 2
		if result < 1 {
			result = 1
		}
		utils.Warnf("CPU负载过高(当前%.1f%%),并发工作器收紧至%d个", cpuUsage, result)
	}

	return result
}
