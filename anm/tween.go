package anm

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/r3d"
)

type Tween string

const (
	TweenNone   Tween = "none"
	TweenLinear Tween = "linear"
	TweenSine   Tween = "sine"
	TweenQuad   Tween = "quad"
	TweenCubic  Tween = "cubic"
	TweenExpo   Tween = "expo"
	TweenCirc   Tween = "circ"
	TweenBounce Tween = "bounce"
)

// TweenFunc maps normalized time in [0,1] to a blend factor in [0,1]
type TweenFunc func(x float64) float64

var tweenFuncs = map[Tween]TweenFunc{
	TweenLinear: func(x float64) float64 { return x },
	TweenSine:   func(x float64) float64 { return 1 - math.Cos(x*math.Pi/2) },
	TweenQuad:   func(x float64) float64 { return x * x },
	TweenCubic:  func(x float64) float64 { return x * x * x },
	TweenExpo: func(x float64) float64 {
		if x == 0 {
			return 0
		}
		return math.Pow(2, 10*x-10)
	},
	TweenCirc:   func(x float64) float64 { return 1 - math.Sqrt(1-x*x) },
	TweenBounce: func(x float64) float64 { return 1 - outBounce(1-x) },
}

func outBounce(x float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case x < 1/d1:
		return n1 * x * x
	case x < 2/d1:
		x -= 1.5 / d1
		return n1*x*x + 0.75
	case x < 2.5/d1:
		x -= 2.25 / d1
		return n1*x*x + 0.9375
	default:
		x -= 2.625 / d1
		return n1*x*x + 0.984375
	}
}

// Func returns nil for TweenNone
func (t Tween) Func() TweenFunc {
	return tweenFuncs[t]
}

func (t Tween) Enabled() bool {
	return t.Func() != nil
}

func ParseTween(name string) (Tween, error) {
	t := Tween(name)
	if t == TweenNone || t.Enabled() {
		return t, nil
	}
	return TweenNone, errors.Errorf("unknown tween %q", name)
}

// Tweens lists every accepted tween name, none first
func Tweens() []Tween {
	result := make([]Tween, 0, len(tweenFuncs)+1)
	for t := range tweenFuncs {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return append([]Tween{TweenNone}, result...)
}

func lerp(a, b *[3]float64, f float64) mgl64.Vec3 {
	va, vb := mgl64.Vec3(*a), mgl64.Vec3(*b)
	return va.Add(vb.Sub(va).Mul(f))
}

// blendTRS blends the channels both keyframes define, takes the raw
// value of the channels only one of them defines
func blendTRS(a, b *TRS, f float64, n *r3d.Node) {
	switch {
	case a == nil && b == nil:
		return
	case a == nil:
		b.Apply(n)
		return
	case b == nil:
		a.Apply(n)
		return
	}

	t := n.Transform()
	if v, ok := blendChannel(a.Translation, b.Translation, f); ok {
		t.Position = v
	}
	if v, ok := blendChannel(a.Rotation, b.Rotation, f); ok {
		t.Rotation = r3d.EulerFromVec3(v)
	}
	if v, ok := blendChannel(a.Scale, b.Scale, f); ok {
		t.Scale = v
	}
	n.SetTransform(t)
}

func blendChannel(a, b *[3]float64, f float64) (mgl64.Vec3, bool) {
	switch {
	case a != nil && b != nil:
		return lerp(a, b, f), true
	case a != nil:
		return mgl64.Vec3(*a), true
	case b != nil:
		return mgl64.Vec3(*b), true
	}
	return mgl64.Vec3{}, false
}

// blendPaths walks both paths and the node subtree together
func blendPaths(a, b *Path, f float64, n *r3d.Node) {
	var ka, kb *TRS
	if a != nil {
		ka = a.Keyframe
	}
	if b != nil {
		kb = b.Keyframe
	}
	blendTRS(ka, kb, f, n)

	visit := func(name string) {
		cn := n.ChildByName(name)
		if cn == nil {
			return
		}
		var ca, cb *Path
		if a != nil {
			ca = a.Children[name]
		}
		if b != nil {
			cb = b.Children[name]
		}
		blendPaths(ca, cb, f, cn)
	}
	if a != nil {
		for name := range a.Children {
			visit(name)
		}
	}
	if b != nil {
		for name := range b.Children {
			if a != nil {
				if _, seen := a.Children[name]; seen {
					continue
				}
			}
			visit(name)
		}
	}
}
