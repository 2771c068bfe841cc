package deform

import (
	"errors"

	"github.com/soypat/glgl/math/ms3"
)

// VecPool provides scratch buffers for the per-frame selection and
// displacement paths so steady-state runs allocate nothing. Buffers are
// acquired from a sub-pool by element type and must be released to the same
// sub-pool. Not safe for concurrent use; each worker owns its own pool.
type VecPool struct {
	V3    SubPool[ms3.Vec]
	Float SubPool[float32]
	Idx   SubPool[int32]
}

// AssertAllReleased returns an error when any acquired buffer has not been
// released back, which usually means a leak in the calling code. Intended
// for test teardown.
func (vp *VecPool) AssertAllReleased() error {
	if vp == nil {
		return nil
	}
	out := vp.V3.outstanding + vp.Float.outstanding + vp.Idx.outstanding
	if out != 0 {
		return errors.New("deform: VecPool buffers not released")
	}
	return nil
}

// SubPool is a free list of same-typed buffers.
type SubPool[T any] struct {
	free        [][]T
	outstanding int
}

// Acquire returns a buffer of length at least minLength, reusing the
// largest free one when possible.
func (p *SubPool[T]) Acquire(minLength int) []T {
	p.outstanding++
	for i := len(p.free) - 1; i >= 0; i-- {
		buf := p.free[i]
		if cap(buf) >= minLength {
			p.free[i] = p.free[len(p.free)-1]
			p.free = p.free[:len(p.free)-1]
			return buf[:minLength]
		}
	}
	return make([]T, minLength)
}

// Release returns a buffer obtained from Acquire to the free list.
func (p *SubPool[T]) Release(buf []T) {
	p.outstanding--
	p.free = append(p.free, buf)
}

// acquireIdx tolerates a nil pool so pooling stays optional in the
// selection hot path.
func acquireIdx(vp *VecPool, minLength int) []int32 {
	if vp == nil {
		return make([]int32, 0, minLength)
	}
	return vp.Idx.Acquire(minLength)
}

func releaseIdx(vp *VecPool, buf []int32) {
	if vp != nil {
		vp.Idx.Release(buf)
	}
}
