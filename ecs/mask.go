package ecs

import "math/bits"

// MaxKinds is the number of component kinds one scene can register. Presence
// masks fit in a single 32-bit word.
const MaxKinds = 32

// Mask records which registered kinds are attached to an entity, one bit per
// kind in registration order.
type Mask uint32

func (m *Mask) Set(bit uint8) {
	*m |= 1 << bit
}

func (m *Mask) Clear(bit uint8) {
	*m &^= 1 << bit
}

func (m Mask) Has(bit uint8) bool {
	return m&(1<<bit) != 0
}

// Contains reports whether every bit of sub is also set in m.
func (m Mask) Contains(sub Mask) bool {
	return m&sub == sub
}

func (m Mask) Count() int {
	return bits.OnesCount32(uint32(m))
}

// Bits yields the set bit positions in ascending order.
func (m Mask) Bits(fn func(bit uint8)) {
	for v := uint32(m); v != 0; v &= v - 1 {
		fn(uint8(bits.TrailingZeros32(v)))
	}
}
