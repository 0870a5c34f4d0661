package renderkey

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Field positions within a key, most significant first.
const (
	FieldOrder = iota
	FieldMaterialIndex
	FieldMaterialVersion
	FieldMeshIndex
	FieldMeshVersion

	FieldCount
)

// KeyBits is the width of Key.
const KeyBits = 64

var (
	ErrLayout        = errors.New("renderkey: invalid layout")
	ErrFieldOverflow = errors.New("renderkey: field value exceeds its width")
)

var fieldNames = [FieldCount]string{"order", "material index", "material version", "mesh index", "mesh version"}

// Layout describes how the five fields are packed into a key. Shifts and
// masks are computed once by NewLayout.
type Layout struct {
	widths [FieldCount]uint
	shifts [FieldCount]uint
	masks  [FieldCount]uint64
}

// DefaultLayout uses 8 bits of order, 20+8 bits of material handle and 20+8
// bits of mesh handle.
var DefaultLayout = MustLayout(8, 20, 8, 20, 8)

// NewLayout builds a layout from five field widths, most significant first.
// Each width must be 1..32 bits and the total must fit in KeyBits.
func NewLayout(widths ...uint) (Layout, error) {
	var l Layout
	if len(widths) != FieldCount {
		return l, eris.Wrapf(ErrLayout, "want %d field widths, got %d", FieldCount, len(widths))
	}

	var total uint
	for i, w := range widths {
		if w == 0 || w > 32 {
			return l, eris.Wrapf(ErrLayout, "%s width %d out of range 1..32", fieldNames[i], w)
		}
		total += w
	}
	if total > KeyBits {
		return l, eris.Wrapf(ErrLayout, "widths sum to %d bits, key holds %d", total, KeyBits)
	}

	shift := total
	for i, w := range widths {
		shift -= w
		l.widths[i] = w
		l.shifts[i] = shift
		l.masks[i] = 1<<w - 1
	}
	return l, nil
}

// MustLayout is NewLayout for layouts known to be valid.
func MustLayout(widths ...uint) Layout {
	l, err := NewLayout(widths...)
	if err != nil {
		panic(err)
	}
	return l
}

// Width returns the bit width of field f.
func (l Layout) Width(f int) uint {
	return l.widths[f]
}

// Shift returns the bit position of the lowest bit of field f.
func (l Layout) Shift(f int) uint {
	return l.shifts[f]
}

// Max returns the largest value field f can hold.
func (l Layout) Max(f int) uint32 {
	return uint32(l.masks[f])
}

// Bits returns the number of key bits the layout uses.
func (l Layout) Bits() uint {
	var total uint
	for _, w := range l.widths {
		total += w
	}
	return total
}

func (l Layout) String() string {
	return fmt.Sprintf("order:%d material:%d/%d mesh:%d/%d",
		l.widths[FieldOrder],
		l.widths[FieldMaterialIndex], l.widths[FieldMaterialVersion],
		l.widths[FieldMeshIndex], l.widths[FieldMeshVersion])
}
