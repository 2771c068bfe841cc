// Package batch processes many ring configurations over one scene with a
// worker pool. The topology processor is not safe for concurrent use, so
// every worker owns its own.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/fleshringaux"
	"github.com/JeongBeomLee/FleshRing-sub000/subdiv"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
	"go.uber.org/zap"
)

// Config holds the shared resources of a batch run. The scene arrays are
// read-only across workers.
type Config struct {
	Positions []ms3.Vec
	UVs       []ms2.Vec
	Indices   []int32

	Pipeline  fleshringaux.Config
	OutputDir string
	ImageSize int
	WebP      bool
	Workers   int
	Log       *zap.SugaredLogger
}

// Job is one ring configuration to process. Name becomes the output file
// stem. Margin and Multiplier override the shared pipeline settings when
// non-zero.
type Job struct {
	Name       string
	Ring       fleshring.Ring
	Margin     float32
	Multiplier float32
}

// Result holds the outcome of one job.
type Result struct {
	Name       string
	FacesAdded int
	Affected   int
	OutputPath string
	Err        error
}

// Run processes every job over the shared scene and writes one heatmap per
// job, reporting progress every two seconds. Returns one result per job in
// job order.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && cfg.Log != nil {
					rate := float64(p) / time.Since(start).Seconds()
					cfg.Log.Infof("[%d/%d] %.1f rings/sec", p, total, rate)
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One processor per worker: cached topology carries over
			// between rings that land close together.
			proc := subdiv.NewProcessor(subdiv.Options{
				MaxLevel:      cfg.Pipeline.MaxLevel,
				MinEdgeLength: cfg.Pipeline.MinEdgeLength,
			})
			err := proc.SetSourceMesh(cfg.Positions, cfg.Indices, cfg.UVs, nil)
			for idx := range jobChan {
				if err != nil {
					results[idx] = Result{Name: jobs[idx].Name, Err: err}
				} else {
					results[idx] = processJob(cfg, proc, jobs[idx])
				}
				processed.Add(1)
			}
		}()
	}
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()
	close(done)
	return results
}

func processJob(cfg Config, proc *subdiv.Processor, job Job) Result {
	pipeline := cfg.Pipeline
	pipeline.Silent = true
	if job.Margin != 0 {
		pipeline.Margin = job.Margin
	}
	if job.Multiplier != 0 {
		pipeline.Multiplier = job.Multiplier
	}
	res, err := fleshringaux.DeformScene(pipeline, proc, job.Ring, nil)
	if err != nil {
		return Result{Name: job.Name, Err: fmt.Errorf("deforming: %w", err)}
	}
	out := Result{
		Name:       job.Name,
		FacesAdded: res.Topology.FacesAdded,
		Affected:   res.Affected.Len(),
	}
	ext := ".png"
	write := fleshringaux.WriteHeatmapPNG
	if cfg.WebP {
		ext = ".webp"
		write = fleshringaux.WriteHeatmapWebP
	}
	out.OutputPath = filepath.Join(cfg.OutputDir, job.Name+ext)
	fp, err := os.Create(out.OutputPath)
	if err != nil {
		out.Err = err
		return out
	}
	defer fp.Close()
	if err := write(fp, res, cfg.ImageSize); err != nil {
		out.Err = fmt.Errorf("writing heatmap: %w", err)
	}
	return out
}
