package subdiv

import (
	"errors"
	"fmt"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/hemesh"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

var (
	ErrNoSourceMesh = errors.New("no source mesh set")
	// ErrAncestryOrder reports a child vertex whose recorded parent does
	// not precede it, which indicates a bug in subdivision insertion and
	// never a user error.
	ErrAncestryOrder = errors.New("subdivision ancestry violates creation order")
)

// Ring parameter changes below these thresholds reuse the cached topology:
// center movement under cacheCenterTol world units and relative size change
// under cacheRadiusTolRel.
const (
	cacheCenterTol    = 1e-3
	cacheRadiusTolRel = 5e-3
)

// SubdivisionVertexRecord expresses one mesh vertex as a barycentric
// combination of at most three source-mesh vertices. Source vertices are
// self-parented with weights (1,0,0); an edge midpoint of two source
// vertices carries (0.5,0.5,0) with the third parent slot repeating the
// first. Weights always sum to 1.
type SubdivisionVertexRecord struct {
	Parents [3]int32
	Weights [3]float32
}

// TopologyResult is the replayable output of one subdivision run: per
// vertex barycentric ancestry plus the refined index, material and
// position buffers. Attribute streams for the refined mesh (normals, skin
// weights) are reconstructed by interpolating source attributes through
// Records, so the result stays valid for any animation pose. Treat as
// immutable once returned: the same result may be served from cache many
// times and handed to a GPU backend.
type TopologyResult struct {
	Records   []SubdivisionVertexRecord
	Indices   []int32
	Materials []int32
	// Positions and UVs are the rest-pose vertex streams of the refined
	// mesh, midpoints included. UVs is nil when the source mesh had no
	// UV stream.
	Positions           []ms3.Vec
	UVs                 []ms2.Vec
	OriginalVertexCount int
	FacesAdded          int
}

// Processor turns a source mesh and a list of ring influence parameters
// into a cached TopologyResult. It is single-threaded: concurrent Process
// calls on one Processor race on the cache, use one Processor per
// goroutine instead.
type Processor struct {
	opt       Options
	positions []ms3.Vec
	uvs       []ms2.Vec
	indices   []int32
	materials []int32
	params    []fleshring.RingParam
	cached    *TopologyResult

	hits         uint64
	computations uint64
}

func NewProcessor(opt Options) *Processor {
	return &Processor{opt: opt}
}

// SetOptions replaces the refinement bounds, invalidating the cached
// result if they changed.
func (p *Processor) SetOptions(opt Options) {
	if opt != p.opt {
		p.opt = opt
		p.cached = nil
	}
}

// SetSourceMesh validates and stores the source vertex streams and
// invalidates any cached result. uvs may be nil or one per position;
// materials may be nil or one per triangle. The slices are retained, not
// copied: the caller must not mutate them for the Processor's lifetime.
// Non-manifold topology is only detected when Process builds the mesh.
func (p *Processor) SetSourceMesh(positions []ms3.Vec, indices []int32, uvs []ms2.Vec, materials []int32) error {
	if len(positions) == 0 {
		return hemesh.ErrEmptyMesh
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d", hemesh.ErrBadIndices, len(indices))
	}
	if uvs != nil && len(uvs) != len(positions) {
		return fmt.Errorf("%w: %d uvs for %d positions", hemesh.ErrBadIndices, len(uvs), len(positions))
	}
	if materials != nil && 3*len(materials) != len(indices) {
		return fmt.Errorf("%w: %d materials for %d triangles", hemesh.ErrBadIndices, len(materials), len(indices)/3)
	}
	for _, v := range indices {
		if v < 0 || int(v) >= len(positions) {
			return fmt.Errorf("%w: vertex %d out of range", hemesh.ErrBadIndices, v)
		}
	}
	p.positions = positions
	p.uvs = uvs
	p.indices = indices
	p.materials = materials
	p.cached = nil
	return nil
}

// NeedsRecomputation reports whether Process would have to recompute for
// the given ring parameters instead of serving the cached result. Equal
// parameter hashes short-circuit; otherwise regions are compared under the
// cache movement thresholds so jitter below them keeps the cache warm.
func (p *Processor) NeedsRecomputation(params []fleshring.RingParam) bool {
	if p.cached == nil {
		return true
	}
	if fleshring.ParamHash(params) == fleshring.ParamHash(p.params) {
		return false
	}
	if len(params) != len(p.params) {
		return true
	}
	for i := range params {
		a, b := params[i], p.params[i]
		if a.Multiplier != b.Multiplier || a.Curve != b.Curve {
			return true
		}
		if !a.Region.AlmostEqual(b.Region, cacheCenterTol, cacheRadiusTolRel) {
			return true
		}
	}
	return false
}

// SetRingParameters stores the rings whose influence regions drive the
// next Process call. Parameters within the cache thresholds of the current
// ones are dropped so the cached result keeps serving; anything beyond
// them replaces the stored set and invalidates the cache.
func (p *Processor) SetRingParameters(params []fleshring.RingParam) {
	if !p.NeedsRecomputation(params) {
		return
	}
	p.params = append(p.params[:0:0], params...)
	p.cached = nil
}

// Process builds the half-edge mesh, refines it once per ring parameter
// and extracts the topology result, serving the identical cached result on
// repeat calls until the source mesh or ring parameters change. A ring
// touching no geometry is not an error and adds no faces.
func (p *Processor) Process() (*TopologyResult, error) {
	if p.cached != nil {
		p.hits++
		return p.cached, nil
	}
	res, err := p.compute(func(m *hemesh.Mesh) int {
		added := 0
		for _, rp := range p.params {
			added += SubdivideRegion(m, rp.Region, p.opt)
		}
		return added
	})
	if err != nil {
		return nil, err
	}
	p.cached = res
	return res, nil
}

// ProcessUniform runs the same extraction pipeline seeded by uniform
// 1-to-4 refinement to maxLevel. Preview path: the result is not cached
// and does not disturb a cached Process result.
func (p *Processor) ProcessUniform(maxLevel int32) (*TopologyResult, error) {
	return p.compute(func(m *hemesh.Mesh) int {
		return SubdivideUniform(m, Options{MaxLevel: maxLevel, MinEdgeLength: p.opt.MinEdgeLength})
	})
}

func (p *Processor) compute(subdivide func(m *hemesh.Mesh) int) (*TopologyResult, error) {
	if p.positions == nil {
		return nil, ErrNoSourceMesh
	}
	m, err := hemesh.NewMesh(p.positions, p.uvs, p.indices, p.materials)
	if err != nil {
		return nil, err
	}
	added := subdivide(m)
	res, err := extract(m, added)
	if err != nil {
		return nil, err
	}
	p.computations++
	return res, nil
}

// CacheHits returns how many Process calls were served from cache over the
// Processor's lifetime.
func (p *Processor) CacheHits() uint64 { return p.hits }

// Computations returns how many full subdivision runs were performed over
// the Processor's lifetime, uniform previews included.
func (p *Processor) Computations() uint64 { return p.computations }

// CachedResult returns the current cached result, nil when invalidated.
// Read-only query surface for editors and debug views.
func (p *Processor) CachedResult() *TopologyResult { return p.cached }

// Reset drops the cached result and zeroes the statistics, keeping the
// source mesh, ring parameters and options in place.
func (p *Processor) Reset() {
	p.cached = nil
	p.hits = 0
	p.computations = 0
}

// extract walks the refined mesh in vertex creation order and resolves
// every vertex's transitive ancestry down to source-mesh vertices. Each
// vertex's immediate parents were recorded at insertion and are strictly
// older, so their own records are always final by the time the child is
// visited; a parent index at or above its child is reported as
// ErrAncestryOrder rather than silently misattributed.
func extract(m *hemesh.Mesh, added int) (*TopologyResult, error) {
	n := m.VertexCount()
	orig := m.OriginalVertexCount()
	records := make([]SubdivisionVertexRecord, n)
	for i := 0; i < orig; i++ {
		records[i] = SubdivisionVertexRecord{
			Parents: [3]int32{int32(i), int32(i), int32(i)},
			Weights: [3]float32{1, 0, 0},
		}
	}
	for i := orig; i < n; i++ {
		pp := m.VertexParents(int32(i))
		if pp[0] < 0 || pp[1] < 0 || pp[0] >= int32(i) || pp[1] >= int32(i) {
			return nil, fmt.Errorf("%w: vertex %d recorded parents %v", ErrAncestryOrder, i, pp)
		}
		records[i] = combineAncestry(&records[pp[0]], &records[pp[1]])
	}
	res := &TopologyResult{
		Records:             records,
		Indices:             m.AppendTriangles(nil),
		Materials:           m.AppendMaterials(nil),
		Positions:           m.AppendPositions(nil),
		OriginalVertexCount: orig,
		FacesAdded:          added,
	}
	if m.HasUVs() {
		res.UVs = m.AppendUVs(nil)
	}
	return res, nil
}

// combineAncestry merges two resolved parent records, each contributing
// half its own ancestry, keeps the three dominant source contributors and
// renormalizes their weights to sum to 1. Unused parent slots repeat the
// first parent with zero weight for determinism.
func combineAncestry(a, b *SubdivisionVertexRecord) SubdivisionVertexRecord {
	var ids [6]int32
	var ws [6]float32
	n := 0
	acc := func(r *SubdivisionVertexRecord) {
		for k := 0; k < 3; k++ {
			w := 0.5 * r.Weights[k]
			if w == 0 {
				continue
			}
			id := r.Parents[k]
			merged := false
			for j := 0; j < n; j++ {
				if ids[j] == id {
					ws[j] += w
					merged = true
					break
				}
			}
			if !merged {
				ids[n] = id
				ws[n] = w
				n++
			}
		}
	}
	acc(a)
	acc(b)
	for n > 3 {
		low := 0
		for j := 1; j < n; j++ {
			if ws[j] < ws[low] {
				low = j
			}
		}
		n--
		ids[low], ws[low] = ids[n], ws[n]
	}
	total := float32(0)
	for j := 0; j < n; j++ {
		total += ws[j]
	}
	var rec SubdivisionVertexRecord
	for j := 0; j < n; j++ {
		rec.Parents[j] = ids[j]
		rec.Weights[j] = ws[j] / total
	}
	for j := n; j < 3; j++ {
		rec.Parents[j] = rec.Parents[0]
	}
	return rec
}
