package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/logging"
)

// Sample is one reading of process resource usage.
type Sample struct {
	RSSBytes uint64
	Threads  int
}

// Sampler reads resource usage of the running process.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// processSampler reads the current process through gopsutil.
type processSampler struct{}

func (processSampler) Sample(ctx context.Context) (Sample, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return Sample{}, fmt.Errorf("open process: %w", err)
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("memory info: %w", err)
	}
	threads, err := p.NumThreadsWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("thread count: %w", err)
	}
	return Sample{RSSBytes: mem.RSS, Threads: int(threads)}, nil
}

const mebibyte = 1024 * 1024

// Performance reports resident memory in MiB, the OS thread count, and how
// long taking the sample took. Figures are rounded to two decimals.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	start := time.Now()

	s, err := h.sampler.Sample(r.Context())
	if err != nil {
		return h.fail(w, err)
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000
	writeJSON(w, http.StatusOK, PerformanceResponse{
		ResponseTimeMS: round2(elapsed),
		MemoryUsageMB:  round2(float64(s.RSSBytes) / mebibyte),
		ThreadCount:    s.Threads,
	})
	return nil
}

func round2(f float64) float64 {
	return toFloat(decimal.NewFromFloat(f).Round(2))
}
