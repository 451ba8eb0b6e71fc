package scenefile

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/anm"
	"github.com/mogaika/scene_editor/utils"
)

/*
Document is the flat, index referenced form of a scene.
Every cross reference is an index into the corresponding top level array.
*/
type Document struct {
	Scene      *int         `json:"scene"`
	Nodes      []*Node      `json:"nodes"`
	Meshes     []*Mesh      `json:"meshes,omitempty"`
	Materials  []*Material  `json:"materials,omitempty"`
	Textures   []*Texture   `json:"textures,omitempty"`
	Images     []*Image     `json:"images,omitempty"`
	Cameras    []*Camera    `json:"cameras,omitempty"`
	Animations []*Animation `json:"animations,omitempty"`
}

type Node struct {
	Name        string `json:"name,omitempty"`
	Translation *Vec3  `json:"translation"`
	Rotation    *Vec3  `json:"rotation"`
	Scale       *Vec3  `json:"scale"`
	Children    []int  `json:"children"`

	Mesh         *int `json:"mesh,omitempty"`
	Camera       *int `json:"camera,omitempty"`
	ActiveCamera bool `json:"activeCamera,omitempty"`

	// scene node only
	Background     *Color `json:"background,omitempty"`
	LightDirection *Vec3  `json:"lightDirection,omitempty"`
	LightColor     *Color `json:"lightColor,omitempty"`
}

type Mesh struct {
	Primitive string             `json:"primitive"`
	Params    map[string]float64 `json:"params,omitempty"`
	Material  *int               `json:"material,omitempty"`
}

const (
	MaterialBasic = "basic"
	MaterialPhong = "phong"
)

type Material struct {
	Type string `json:"type"`

	// basic
	Color *Color `json:"color,omitempty"`

	// phong
	Ambient   *Color   `json:"ambient,omitempty"`
	Diffuse   *Color   `json:"diffuse,omitempty"`
	Specular  *Color   `json:"specular,omitempty"`
	Shininess *float64 `json:"shininess,omitempty"`

	Textures []int `json:"textures,omitempty"`
}

type Texture struct {
	Source    *int   `json:"source"`
	WrapS     string `json:"wrapS,omitempty"`
	WrapT     string `json:"wrapT,omitempty"`
	MinFilter string `json:"minFilter,omitempty"`
	MagFilter string `json:"magFilter,omitempty"`
	FlipY     bool   `json:"flipY,omitempty"`
}

type Image struct {
	URI string `json:"uri"`
}

const (
	CameraPerspective  = "perspective"
	CameraOrthographic = "orthographic"
	CameraOblique      = "oblique"
)

type Camera struct {
	Type         string        `json:"type"`
	Perspective  *Perspective  `json:"perspective,omitempty"`
	Orthographic *Orthographic `json:"orthographic,omitempty"`
	Oblique      *Oblique      `json:"oblique,omitempty"`
}

// Perspective takes yfov in radians
type Perspective struct {
	Yfov   float64 `json:"yfov"`
	Aspect float64 `json:"aspectRatio"`
	Znear  float64 `json:"znear"`
	Zfar   float64 `json:"zfar"`
}

type Orthographic struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Znear  float64 `json:"znear"`
	Zfar   float64 `json:"zfar"`
}

type Oblique struct {
	Orthographic
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

type Animation struct {
	Target  *int      `json:"target"`
	FPS     float64   `json:"fps"`
	Tween   string    `json:"tween"`
	Reverse bool      `json:"reverse,omitempty"`
	Playing bool      `json:"playing,omitempty"`
	Clip    *anm.Clip `json:"clip"`
}

// Vec3 must be exactly three numbers
type Vec3 [3]float64

func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return errors.Wrap(err, "vec3")
	}
	if len(arr) != 3 {
		return errors.Errorf("vec3: expected 3 numbers, got %d", len(arr))
	}
	copy(v[:], arr)
	return nil
}

// Color is either a hex string or a 4 element float array in the document
type Color utils.ColorFloat

func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "color")
		}
		cf, err := utils.ParseHexColor(s)
		if err != nil {
			return err
		}
		*c = Color(cf)
		return nil
	}

	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return errors.Wrap(err, "color")
	}
	if len(arr) != 4 {
		return errors.Errorf("color: expected 4 numbers, got %d", len(arr))
	}
	*c = Color(utils.NewColorFloatA(arr))
	return nil
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64(c))
}

func (c Color) ColorFloat() utils.ColorFloat { return utils.ColorFloat(c) }

func newColor(c utils.ColorFloat) *Color {
	cc := Color(c)
	return &cc
}

func newVec3(v [3]float64) *Vec3 {
	vv := Vec3(v)
	return &vv
}

func index(i int) *int {
	return &i
}

// Decode parses and validates a document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode scene document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (doc *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "encode scene document")
}
