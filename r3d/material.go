package r3d

import (
	"image"

	"github.com/mogaika/scene_editor/utils"
)

type MaterialType string

const (
	MaterialBasic MaterialType = "basic"
	MaterialPhong MaterialType = "phong"
)

// Material is an opaque uniform provider for the renderer
type Material interface {
	Type() MaterialType
	Uniforms() map[string]interface{}
	Textures() []*Texture
}

type BasicMaterial struct {
	Color utils.ColorFloat
	Maps  []*Texture
}

func NewBasicMaterial(color utils.ColorFloat) *BasicMaterial {
	return &BasicMaterial{Color: color}
}

func (m *BasicMaterial) Type() MaterialType   { return MaterialBasic }
func (m *BasicMaterial) Textures() []*Texture { return m.Maps }

func (m *BasicMaterial) Uniforms() map[string]interface{} {
	return map[string]interface{}{
		"color":      m.Color,
		"hasTexture": len(m.Maps) != 0,
	}
}

type PhongMaterial struct {
	Ambient   utils.ColorFloat
	Diffuse   utils.ColorFloat
	Specular  utils.ColorFloat
	Shininess float64
	Maps      []*Texture
}

func NewPhongMaterial(diffuse utils.ColorFloat) *PhongMaterial {
	return &PhongMaterial{
		Ambient:   utils.ColorFloat{0.1, 0.1, 0.1, 1},
		Diffuse:   diffuse,
		Specular:  utils.ColorWhite,
		Shininess: 32,
	}
}

func (m *PhongMaterial) Type() MaterialType   { return MaterialPhong }
func (m *PhongMaterial) Textures() []*Texture { return m.Maps }

func (m *PhongMaterial) Uniforms() map[string]interface{} {
	return map[string]interface{}{
		"ambient":    m.Ambient,
		"diffuse":    m.Diffuse,
		"specular":   m.Specular,
		"shininess":  m.Shininess,
		"hasTexture": len(m.Maps) != 0,
	}
}

type Wrap string

const (
	WrapRepeat Wrap = "repeat"
	WrapClamp  Wrap = "clamp"
	WrapMirror Wrap = "mirror"
)

type Filter string

const (
	FilterNearest Filter = "nearest"
	FilterLinear  Filter = "linear"
)

type Texture struct {
	Image     *Image
	WrapS     Wrap
	WrapT     Wrap
	MinFilter Filter
	MagFilter Filter
	FlipY     bool
}

func NewTexture(img *Image) *Texture {
	return &Texture{
		Image:     img,
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
	}
}

// Image pixels arrive asynchronously; Data stays nil until then
type Image struct {
	URI  string
	Data image.Image
}
