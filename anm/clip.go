package anm

import (
	"bytes"
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/r3d"
)

// TRS channels are independent: nil means "not authored at this frame"
type TRS struct {
	Translation *[3]float64 `json:"translation,omitempty" yaml:"translation,omitempty"`
	Rotation    *[3]float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale       *[3]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// UnmarshalJSON rejects channels that are not exactly three numbers
func (k *TRS) UnmarshalJSON(data []byte) error {
	var raw struct {
		Translation json.RawMessage `json:"translation"`
		Rotation    json.RawMessage `json:"rotation"`
		Scale       json.RawMessage `json:"scale"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return errors.Wrap(err, "keyframe")
	}

	var out TRS
	for _, ch := range []struct {
		name string
		raw  json.RawMessage
		dst  **[3]float64
	}{
		{"translation", raw.Translation, &out.Translation},
		{"rotation", raw.Rotation, &out.Rotation},
		{"scale", raw.Scale, &out.Scale},
	} {
		if len(ch.raw) == 0 || string(ch.raw) == "null" {
			continue
		}
		var arr []float64
		if err := json.Unmarshal(ch.raw, &arr); err != nil {
			return errors.Wrapf(err, "keyframe.%s", ch.name)
		}
		if len(arr) != 3 {
			return errors.Errorf("keyframe.%s: expected 3 numbers, got %d", ch.name, len(arr))
		}
		*ch.dst = &[3]float64{arr[0], arr[1], arr[2]}
	}
	*k = out
	return nil
}

func vec(v mgl64.Vec3) *[3]float64 {
	a := [3]float64(v)
	return &a
}

// Capture fills every channel from t
func (k *TRS) Capture(t r3d.Transform) {
	k.Translation = vec(t.Position)
	k.Rotation = vec(t.Rotation.Vec3())
	k.Scale = vec(t.Scale)
}

func (k *TRS) IsEmpty() bool {
	return k.Translation == nil && k.Rotation == nil && k.Scale == nil
}

// Apply writes the authored channels into the node transform
func (k *TRS) Apply(n *r3d.Node) {
	t := n.Transform()
	if k.Translation != nil {
		t.Position = mgl64.Vec3(*k.Translation)
	}
	if k.Rotation != nil {
		t.Rotation = r3d.EulerFromVec3(mgl64.Vec3(*k.Rotation))
	}
	if k.Scale != nil {
		t.Scale = mgl64.Vec3(*k.Scale)
	}
	n.SetTransform(t)
}

/*
Path is a sparse overlay of the animated subtree for one frame.
The root path corresponds to the runner target, Children are keyed
by child node name.
*/
type Path struct {
	Keyframe *TRS            `json:"keyframe,omitempty" yaml:"keyframe,omitempty"`
	Children map[string]*Path `json:"children,omitempty" yaml:"children,omitempty"`
}

func NewPath() *Path {
	return &Path{Children: make(map[string]*Path)}
}

func (p *Path) child(name string, create bool) *Path {
	// a null entry from a document counts as absent
	if c := p.Children[name]; c != nil || !create {
		return c
	}
	if p.Children == nil {
		p.Children = make(map[string]*Path)
	}
	c := NewPath()
	p.Children[name] = c
	return c
}

// Apply walks p and the node subtree in lock step, matching children
// by name. Unmatched names on either side are skipped.
func (p *Path) Apply(n *r3d.Node) {
	if p.Keyframe != nil {
		p.Keyframe.Apply(n)
	}
	for name, cp := range p.Children {
		if cp == nil {
			continue
		}
		if cn := n.ChildByName(name); cn != nil {
			cp.Apply(cn)
		}
	}
}

type Clip struct {
	Name   string  `json:"name" yaml:"name"`
	Frames []*Path `json:"frames" yaml:"frames"`
}

func NewClip(name string, frames int) *Clip {
	c := &Clip{Name: name, Frames: make([]*Path, frames)}
	for i := range c.Frames {
		c.Frames[i] = NewPath()
	}
	return c
}

// WrapFrame maps any frame number into [0, length)
func WrapFrame(frame, length int) int {
	if length <= 0 {
		return 0
	}
	return ((frame % length) + length) % length
}
