package tracer

import "github.com/achilleasa/helios/types"

// A participating medium a ray can travel through.
type Medium struct {
	Absorption types.Vec3
	Index      float32
}

// The ambient medium at the bottom of every stack.
var airMedium = Medium{Index: 1}

// A bounded stack mirroring the nested transparent objects the current ray
// is inside, innermost on top. The bottom entry is always the ambient air
// medium and can never be popped; capacity is fixed at construction so no
// allocation happens during tracing.
type MediumStack struct {
	entries []Medium
}

// Create a medium stack able to nest capacity media on top of the air
// sentinel.
func NewMediumStack(capacity int) *MediumStack {
	s := &MediumStack{entries: make([]Medium, 1, capacity+1)}
	s.entries[0] = airMedium
	return s
}

// Push a medium. Returns false when the stack is full, in which case the
// stack is unchanged and the caller must skip the matching Pop.
func (s *MediumStack) Push(m Medium) bool {
	if len(s.entries) == cap(s.entries) {
		return false
	}
	s.entries = append(s.entries, m)
	return true
}

// Pop the top medium. The air sentinel is never popped; returns false when
// only the sentinel remains.
func (s *MediumStack) Pop() (Medium, bool) {
	if len(s.entries) == 1 {
		return s.entries[0], false
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// Get the medium the ray currently travels through.
func (s *MediumStack) Top() Medium {
	return s.entries[len(s.entries)-1]
}

// Get the number of stacked media including the sentinel.
func (s *MediumStack) Depth() int {
	return len(s.entries)
}

// Pop until only the air sentinel remains.
func (s *MediumStack) PopUntil1() {
	s.entries = s.entries[:1]
}
