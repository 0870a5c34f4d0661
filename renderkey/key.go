package renderkey

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/milk9111/slotengine/slotmap"
)

// Key is a packed draw key. Sorting keys as plain integers gives draw order
// first, then groups by material, then by mesh.
type Key uint64

func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// Fields are the unpacked parts of a key.
type Fields struct {
	Order           uint32
	MaterialIndex   uint32
	MaterialVersion uint32
	MeshIndex       uint32
	MeshVersion     uint32
}

// FieldsFor builds fields from resource handles.
func FieldsFor(order uint32, material, mesh slotmap.Handle) Fields {
	return Fields{
		Order:           order,
		MaterialIndex:   material.Index,
		MaterialVersion: material.Version,
		MeshIndex:       mesh.Index,
		MeshVersion:     mesh.Version,
	}
}

func (f Fields) Material() slotmap.Handle {
	return slotmap.Handle{Index: f.MaterialIndex, Version: f.MaterialVersion}
}

func (f Fields) Mesh() slotmap.Handle {
	return slotmap.Handle{Index: f.MeshIndex, Version: f.MeshVersion}
}

func (f Fields) values() [FieldCount]uint32 {
	return [FieldCount]uint32{f.Order, f.MaterialIndex, f.MaterialVersion, f.MeshIndex, f.MeshVersion}
}

// Encode packs f. Order is stored inverted, so a smaller order yields a
// larger key and draws later in an ascending sort.
func (l Layout) Encode(f Fields) (Key, error) {
	vals := f.values()
	for i, v := range vals {
		if uint64(v) > l.masks[i] {
			return 0, eris.Wrapf(ErrFieldOverflow, "%s %d does not fit in %d bits", fieldNames[i], v, l.widths[i])
		}
	}
	vals[FieldOrder] = l.Max(FieldOrder) - vals[FieldOrder]

	var k uint64
	for i, v := range vals {
		k |= uint64(v) << l.shifts[i]
	}
	return Key(k), nil
}

// MustEncode is Encode for fields already known to fit.
func (l Layout) MustEncode(f Fields) Key {
	k, err := l.Encode(f)
	if err != nil {
		panic(err)
	}
	return k
}

// Decode unpacks k.
func (l Layout) Decode(k Key) Fields {
	var vals [FieldCount]uint32
	for i := range vals {
		vals[i] = uint32(uint64(k) >> l.shifts[i] & l.masks[i])
	}
	return Fields{
		Order:           l.Max(FieldOrder) - vals[FieldOrder],
		MaterialIndex:   vals[FieldMaterialIndex],
		MaterialVersion: vals[FieldMaterialVersion],
		MeshIndex:       vals[FieldMeshIndex],
		MeshVersion:     vals[FieldMeshVersion],
	}
}

// Liveness is satisfied by anything that can tell whether a handle still
// refers to a live value, such as a slotmap arena or resource manager.
type Liveness interface {
	Contains(h slotmap.Handle) bool
}

// Stale reports whether the material or mesh encoded in f has since been
// released or its slot reused.
func Stale(f Fields, materials, meshes Liveness) bool {
	return !materials.Contains(f.Material()) || !meshes.Contains(f.Mesh())
}
