package gfx

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/slotmap"
)

type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = component.NewNamedComponent[Transform]("gfx.transform")

// Sprite draws a mesh with a material. Larger Order values draw first.
type Sprite struct {
	Mesh     slotmap.Handle
	Material slotmap.Handle
	Order    uint32
	OriginX  float64
	OriginY  float64
	Hidden   bool
}

var SpriteComponent = component.NewNamedComponent[Sprite]("gfx.sprite")

// Mesh is a region of a material's image.
type Mesh struct {
	Source image.Rectangle
}

// Quad is a mesh covering a w by h image from its origin.
func Quad(w, h int) Mesh {
	return Mesh{Source: image.Rect(0, 0, w, h)}
}

func (m Mesh) Width() float64 {
	return float64(m.Source.Dx())
}

func (m Mesh) Height() float64 {
	return float64(m.Source.Dy())
}

type Material struct {
	Image *ebiten.Image
	Tint  color.RGBA
}

// NewSolidTexture returns a w by h image filled with c.
func NewSolidTexture(w, h int, c color.Color) *ebiten.Image {
	img := ebiten.NewImage(w, h)
	img.Fill(c)
	return img
}
