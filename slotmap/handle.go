package slotmap

import (
	"fmt"
	"math"
)

// Handle is an opaque key into an Arena. Two handles are equal when both the
// index and the version match, so handles work as map keys.
type Handle struct {
	Index   uint32
	Version uint32
}

// Null never refers to a live element of any arena.
var Null = Handle{Index: math.MaxUint32, Version: 1}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == Null
}

func (h Handle) String() string {
	if h.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%dv%d", h.Index, h.Version)
}

// Less orders handles by index, then version.
func (h Handle) Less(o Handle) bool {
	if h.Index != o.Index {
		return h.Index < o.Index
	}
	return h.Version < o.Version
}

// CeilingError reports that a hard capacity limit was exceeded. It is raised
// through panic: the engine is only defined below these limits.
type CeilingError struct {
	Ceiling string
	Limit   uint64
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("capacity ceiling exceeded: %s (limit %d)", e.Ceiling, e.Limit)
}
