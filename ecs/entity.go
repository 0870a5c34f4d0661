package ecs

import (
	"strconv"

	"github.com/milk9111/slotengine/slotmap"
)

// Entity packs a scene-local index (low 32 bits) and the generation it was
// spawned with (high 32 bits). The zero Entity is never alive.
type Entity uint64

const entityIndexBits = 32

func entityOf(h slotmap.Handle) Entity {
	return Entity(uint64(h.Version)<<entityIndexBits | uint64(h.Index))
}

func (e Entity) handle() slotmap.Handle {
	return slotmap.Handle{Index: e.Index(), Version: e.Generation()}
}

// Index is the entity's dense index; component columns are addressed by it.
func (e Entity) Index() uint32 {
	return uint32(e)
}

func (e Entity) Generation() uint32 {
	return uint32(uint64(e) >> entityIndexBits)
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.Index()), 10) + "g" + strconv.FormatUint(uint64(e.Generation()), 10)
}

func (e Entity) Valid() bool {
	return e.Index() != 0 && e.Generation() != 0
}
