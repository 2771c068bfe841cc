package deform

import (
	"fmt"
	"sort"

	"github.com/JeongBeomLee/FleshRing-sub000/subdiv"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// MaxBoneInfluences is the fixed per-vertex bone influence capacity of the
// skinning pipeline.
const MaxBoneInfluences = 8

// SkinVertex is one vertex's bone-weight list. Unused slots carry zero
// weight; live weights sum to 1.
type SkinVertex struct {
	Bones   [MaxBoneInfluences]int32
	Weights [MaxBoneInfluences]float32
}

// InterpolateVec3 replays the barycentric vertex records over a per-vertex
// source attribute, producing the refined mesh's attribute stream. src must
// cover every parent index the records reference, which Process guarantees
// equals the original vertex count. Original vertices reproduce their source
// value exactly. dst is reused when it has capacity.
func InterpolateVec3(recs []subdiv.SubdivisionVertexRecord, src []ms3.Vec, dst []ms3.Vec) ([]ms3.Vec, error) {
	if err := checkParents(recs, len(src)); err != nil {
		return nil, err
	}
	dst = dst[:0]
	for i := range recs {
		r := &recs[i]
		v := ms3.Scale(r.Weights[0], src[r.Parents[0]])
		v = ms3.Add(v, ms3.Scale(r.Weights[1], src[r.Parents[1]]))
		v = ms3.Add(v, ms3.Scale(r.Weights[2], src[r.Parents[2]]))
		dst = append(dst, v)
	}
	return dst, nil
}

// InterpolateVec2 is InterpolateVec3 for two-component attributes such as
// UVs.
func InterpolateVec2(recs []subdiv.SubdivisionVertexRecord, src []ms2.Vec, dst []ms2.Vec) ([]ms2.Vec, error) {
	if err := checkParents(recs, len(src)); err != nil {
		return nil, err
	}
	dst = dst[:0]
	for i := range recs {
		r := &recs[i]
		var v ms2.Vec
		for k := 0; k < 3; k++ {
			p := src[r.Parents[k]]
			v.X += r.Weights[k] * p.X
			v.Y += r.Weights[k] * p.Y
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// TransferSkinWeights blends the parent bone influences of every vertex
// record into a skin vertex for the refined mesh: each parent's influences
// enter scaled by the record weight, influences below threshold are
// dropped, the MaxBoneInfluences largest are kept and the survivors are
// renormalized to sum 1. A vertex whose influences all fall below threshold
// keeps its single strongest influence at full weight so no vertex detaches
// from the skeleton.
func TransferSkinWeights(recs []subdiv.SubdivisionVertexRecord, src []SkinVertex, threshold float32) ([]SkinVertex, error) {
	if err := checkParents(recs, len(src)); err != nil {
		return nil, err
	}
	out := make([]SkinVertex, len(recs))
	type influence struct {
		bone   int32
		weight float32
	}
	var blend []influence
	for i := range recs {
		r := &recs[i]
		blend = blend[:0]
		for k := 0; k < 3; k++ {
			rw := r.Weights[k]
			if rw == 0 {
				continue
			}
			parent := &src[r.Parents[k]]
			for b := 0; b < MaxBoneInfluences; b++ {
				w := rw * parent.Weights[b]
				if w == 0 {
					continue
				}
				bone := parent.Bones[b]
				merged := false
				for j := range blend {
					if blend[j].bone == bone {
						blend[j].weight += w
						merged = true
						break
					}
				}
				if !merged {
					blend = append(blend, influence{bone: bone, weight: w})
				}
			}
		}
		if len(blend) == 0 {
			continue
		}
		sort.Slice(blend, func(a, b int) bool { return blend[a].weight > blend[b].weight })
		kept := blend
		if len(kept) > MaxBoneInfluences {
			kept = kept[:MaxBoneInfluences]
		}
		for len(kept) > 1 && kept[len(kept)-1].weight < threshold {
			kept = kept[:len(kept)-1]
		}
		total := float32(0)
		for _, inf := range kept {
			total += inf.weight
		}
		sv := &out[i]
		for b, inf := range kept {
			sv.Bones[b] = inf.bone
			sv.Weights[b] = inf.weight / total
		}
	}
	return out, nil
}

func checkParents(recs []subdiv.SubdivisionVertexRecord, n int) error {
	for i := range recs {
		for _, p := range recs[i].Parents {
			if p < 0 || int(p) >= n {
				return fmt.Errorf("vertex record %d references parent %d outside source of %d", i, p, n)
			}
		}
	}
	return nil
}
