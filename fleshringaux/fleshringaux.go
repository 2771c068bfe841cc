// Package fleshringaux aids users in getting set up with the fleshring
// engine quickly: a one-call deformation pipeline, influence heatmap
// rendering and procedural demo meshes. Applications vary widely, so these
// helpers trade flexibility for brevity; serious users should wire the
// engine packages directly.
package fleshringaux

import (
	"errors"
	"fmt"
	"time"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/deform"
	"github.com/JeongBeomLee/FleshRing-sub000/spatial"
	"github.com/JeongBeomLee/FleshRing-sub000/subdiv"
	"github.com/soypat/glgl/math/ms3"
)

// Config bounds one DeformScene run.
type Config struct {
	// MaxLevel and MinEdgeLength bound the adaptive subdivision.
	MaxLevel      int32
	MinEdgeLength float32
	// Margin grows the ring's influence region outward.
	Margin float32
	// Multiplier scales influence weights on top of the falloff.
	Multiplier float32
	Curve      fleshring.Curve
	// WeightThreshold drops bone influences below it during skin-weight
	// transfer.
	WeightThreshold float32
	// Tightness pulls affected vertices toward the ring axis, Bulge
	// pushes them back out at the band edges. World units at weight 1.
	Tightness float32
	Bulge     float32
	// Silent suppresses stage-timing output.
	Silent bool
}

// Result is the output of one DeformScene run: the replayable topology, the
// affected-vertex selection over the refined vertices, the displaced
// refined positions and, when skin weights were provided, the transferred
// skin stream.
type Result struct {
	Topology *subdiv.TopologyResult
	Affected deform.Affected
	Ring     fleshring.Ring
	// Positions are the refined rest positions after ring displacement.
	Positions []ms3.Vec
	// Skin is nil when the scene had no skin weights.
	Skin []deform.SkinVertex
}

// DeformScene runs the whole pipeline over an already-sourced processor:
// subdivide around the ring, select the affected vertices, transfer skin
// weights to the refined mesh and displace. proc must have a source mesh
// set; its ring parameters are replaced. skin may be nil.
func DeformScene(cfg Config, proc *subdiv.Processor, ring fleshring.Ring, skin []deform.SkinVertex) (*Result, error) {
	if proc == nil {
		return nil, errors.New("nil processor")
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 1
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	var bld fleshring.Builder
	bld.NoParamPanic = true
	param := bld.NewRingParam(bld.NewTubeRegion(ring, cfg.Margin), cfg.Multiplier, cfg.Curve)
	if err := bld.Err(); err != nil {
		return nil, err
	}

	watch := stopwatch()
	proc.SetOptions(subdiv.Options{MaxLevel: cfg.MaxLevel, MinEdgeLength: cfg.MinEdgeLength})
	proc.SetRingParameters([]fleshring.RingParam{param})
	topo, err := proc.Process()
	if err != nil {
		return nil, fmt.Errorf("processing topology: %w", err)
	}
	log("subdivision added", topo.FacesAdded, "faces over",
		topo.OriginalVertexCount, "source vertices in", watch())

	watch = stopwatch()
	hash, err := spatial.New(topo.Positions, spatialCell(ring))
	if err != nil {
		return nil, err
	}
	sel := deform.DistanceSelector{
		Ring:       ring,
		Bone:       fleshring.IdentityTransform(),
		Multiplier: cfg.Multiplier,
		Curve:      cfg.Curve,
	}
	res := &Result{Topology: topo, Ring: ring}
	sel.Select(&res.Affected, topo.Positions, hash, nil)
	log("selected", res.Affected.Len(), "of", len(topo.Positions), "vertices in", watch())

	if skin != nil {
		watch = stopwatch()
		res.Skin, err = deform.TransferSkinWeights(topo.Records, skin, cfg.WeightThreshold)
		if err != nil {
			return nil, fmt.Errorf("transferring skin weights: %w", err)
		}
		log("transferred skin weights in", watch())
	}

	watch = stopwatch()
	res.Positions = make([]ms3.Vec, len(topo.Positions))
	rd := deform.RingDeform{
		Ring:      ring,
		Bone:      fleshring.IdentityTransform(),
		Tightness: cfg.Tightness,
		Bulge:     cfg.Bulge,
		Curve:     cfg.Curve,
	}
	if err := rd.Apply(res.Positions, topo.Positions, &res.Affected); err != nil {
		return nil, fmt.Errorf("displacing: %w", err)
	}
	log("displaced in", watch())
	return res, nil
}

// spatialCell picks a hash cell on the order of the ring band so queries
// visit few cells without bucketing the whole mesh together.
func spatialCell(ring fleshring.Ring) float32 {
	c := ring.Width
	if c <= 0 {
		c = 1
	}
	return c
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
