// Command fleshring subdivides a demo limb mesh around the configured
// rings, computes influence weights and writes one influence heatmap per
// ring.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/JeongBeomLee/FleshRing-sub000/fleshringaux"
	"github.com/JeongBeomLee/FleshRing-sub000/internal/batch"
	"github.com/JeongBeomLee/FleshRing-sub000/internal/config"
	"github.com/JeongBeomLee/FleshRing-sub000/internal/logger"
	"github.com/JeongBeomLee/FleshRing-sub000/subdiv"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config, defaults to ./fleshring.yaml when present")
		writeConfig = flag.Bool("writeconfig", false, "write the default config to the -config path and exit")
		outDir      = flag.String("out", "", "output directory, overrides output.dir")
		workers     = flag.Int("workers", 0, "worker count, overrides batch.workers, 0 means one per CPU")
		uniform     = flag.Bool("uniform", false, "preview uniform 1:4 refinement instead of ring-adaptive")
		level       = flag.Int("level", 0, "max subdivision level, overrides subdivision.max_level when positive")
	)
	flag.Parse()
	if err := run(*configPath, *outDir, *workers, *level, *uniform, *writeConfig); err != nil {
		fmt.Fprintln(os.Stderr, "fleshring:", err)
		os.Exit(1)
	}
}

func run(configPath, outDir string, workers, level int, uniform, writeConfig bool) error {
	if writeConfig {
		if configPath == "" {
			configPath = "fleshring.yaml"
		}
		return config.Save(config.Default(), configPath)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if workers > 0 {
		cfg.Batch.Workers = workers
	} else if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = runtime.NumCPU()
	}
	if level > 0 {
		cfg.Subdivision.MaxLevel = int32(level)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar

	curve, err := cfg.Curve()
	if err != nil {
		return err
	}
	// The demo limb is a tube sized to the first ring.
	first, err := cfg.Rings[0].Ring()
	if err != nil {
		return err
	}
	limb := fleshringaux.TubeMesh(48, 64, first.Radius, 6*first.Radius)
	log.Infof("demo limb: %d vertices, %d triangles", len(limb.Positions), len(limb.Indices)/3)

	if uniform {
		proc := subdiv.NewProcessor(subdiv.Options{
			MaxLevel:      cfg.Subdivision.MaxLevel,
			MinEdgeLength: cfg.Subdivision.MinEdgeLength,
		})
		if err := proc.SetSourceMesh(limb.Positions, limb.Indices, limb.UVs, nil); err != nil {
			return err
		}
		res, err := proc.ProcessUniform(cfg.Subdivision.MaxLevel)
		if err != nil {
			return err
		}
		log.Infof("uniform preview: %d faces added, %d vertices total",
			res.FacesAdded, len(res.Positions))
		return nil
	}

	pipeline := fleshringaux.Config{
		MaxLevel:        cfg.Subdivision.MaxLevel,
		MinEdgeLength:   cfg.Subdivision.MinEdgeLength,
		Curve:           curve,
		WeightThreshold: cfg.Deform.WeightThreshold,
		Tightness:       cfg.Deform.Tightness,
		Bulge:           cfg.Deform.Bulge,
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}
	jobs := make([]batch.Job, 0, len(cfg.Rings))
	for _, rc := range cfg.Rings {
		ring, err := rc.Ring()
		if err != nil {
			return err
		}
		jobs = append(jobs, batch.Job{
			Name:       rc.Name,
			Ring:       ring,
			Margin:     rc.Margin,
			Multiplier: rc.Multiplier,
		})
	}
	results := batch.Run(batch.Config{
		Positions: limb.Positions,
		UVs:       limb.UVs,
		Indices:   limb.Indices,
		Pipeline:  pipeline,
		OutputDir: cfg.Output.Dir,
		ImageSize: cfg.Output.Size,
		WebP:      cfg.Output.WebP,
		Workers:   cfg.Batch.Workers,
		Log:       log,
	}, jobs)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Errorf("%s: %v", r.Name, r.Err)
			continue
		}
		log.Infof("%s: %d faces added, %d affected vertices -> %s",
			r.Name, r.FacesAdded, r.Affected, r.OutputPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rings failed", failed, len(results))
	}
	return nil
}
