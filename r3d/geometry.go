package r3d

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	AttributePosition  = "position"
	AttributeNormal    = "normal"
	AttributeUV        = "uv"
	AttributeTangent   = "tangent"
	AttributeBitangent = "bitangent"
)

type BufferAttribute struct {
	Data     []float64
	ItemSize int
}

func NewBufferAttribute(data []float64, itemSize int) *BufferAttribute {
	return &BufferAttribute{Data: data, ItemSize: itemSize}
}

func (a *BufferAttribute) Count() int {
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.Data) / a.ItemSize
}

func (a *BufferAttribute) Vec3(i int) mgl64.Vec3 {
	o := i * a.ItemSize
	return mgl64.Vec3{a.Data[o], a.Data[o+1], a.Data[o+2]}
}

func (a *BufferAttribute) Vec2(i int) mgl64.Vec2 {
	o := i * a.ItemSize
	return mgl64.Vec2{a.Data[o], a.Data[o+1]}
}

func (a *BufferAttribute) SetVec3(i int, v mgl64.Vec3) {
	o := i * a.ItemSize
	a.Data[o], a.Data[o+1], a.Data[o+2] = v[0], v[1], v[2]
}

func (a *BufferAttribute) AddVec3(i int, v mgl64.Vec3) {
	o := i * a.ItemSize
	a.Data[o] += v[0]
	a.Data[o+1] += v[1]
	a.Data[o+2] += v[2]
}

// BufferGeometry is vertex data handed to the renderer as is
type BufferGeometry struct {
	Attributes map[string]*BufferAttribute
	Indices    []uint32
}

func NewBufferGeometry() *BufferGeometry {
	return &BufferGeometry{Attributes: make(map[string]*BufferAttribute)}
}

func (g *BufferGeometry) SetAttribute(name string, a *BufferAttribute) {
	g.Attributes[name] = a
}

func (g *BufferGeometry) Attribute(name string) *BufferAttribute {
	return g.Attributes[name]
}

func (g *BufferGeometry) IsIndexed() bool {
	return g.Indices != nil
}

// zeroedAttribute reuses the existing attribute storage unless forced
func (g *BufferGeometry) zeroedAttribute(name string, count int, forceNew bool) *BufferAttribute {
	a := g.Attributes[name]
	if forceNew || a == nil || a.ItemSize != 3 || len(a.Data) != count*3 {
		a = NewBufferAttribute(make([]float64, count*3), 3)
		g.Attributes[name] = a
		return a
	}
	for i := range a.Data {
		a.Data[i] = 0
	}
	return a
}

// triangles calls fn for every triangle, by index triple or by
// consecutive vertices when the geometry has no indices
func (g *BufferGeometry) triangles(vertexCount int, fn func(a, b, c int)) {
	if g.IsIndexed() {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			fn(int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2]))
		}
	} else {
		for i := 0; i+2 < vertexCount; i += 3 {
			fn(i, i+1, i+2)
		}
	}
}

// CalculateNormals computes vertex normals, then tangents and bitangents.
//
// Indexed geometry accumulates the unnormalized face normal of every
// triangle sharing a vertex (smooth, weighted by face area).
// Non indexed geometry writes the normalized face normal to each of the
// triangle's vertices (flat shading).
func (g *BufferGeometry) CalculateNormals(forceNewAttribute bool) {
	positions := g.Attributes[AttributePosition]
	if positions == nil {
		return
	}
	count := positions.Count()
	normals := g.zeroedAttribute(AttributeNormal, count, forceNewAttribute)

	indexed := g.IsIndexed()
	g.triangles(count, func(a, b, c int) {
		pA, pB, pC := positions.Vec3(a), positions.Vec3(b), positions.Vec3(c)
		n := pC.Sub(pB).Cross(pA.Sub(pB))
		if indexed {
			normals.AddVec3(a, n)
			normals.AddVec3(b, n)
			normals.AddVec3(c, n)
		} else {
			n = Normalize(n)
			normals.SetVec3(a, n)
			normals.SetVec3(b, n)
			normals.SetVec3(c, n)
		}
	})

	g.calculateTangents(forceNewAttribute)
}

func (g *BufferGeometry) calculateTangents(forceNewAttribute bool) {
	positions := g.Attributes[AttributePosition]
	uvs := g.Attributes[AttributeUV]
	if positions == nil || uvs == nil {
		return
	}
	count := positions.Count()
	tangents := g.zeroedAttribute(AttributeTangent, count, forceNewAttribute)
	bitangents := g.zeroedAttribute(AttributeBitangent, count, forceNewAttribute)

	g.triangles(count, func(a, b, c int) {
		p0, p1, p2 := positions.Vec3(a), positions.Vec3(b), positions.Vec3(c)
		uv0, uv1, uv2 := uvs.Vec2(a), uvs.Vec2(b), uvs.Vec2(c)

		edge1, edge2 := p1.Sub(p0), p2.Sub(p0)
		duv1, duv2 := uv1.Sub(uv0), uv2.Sub(uv0)

		det := duv1[0]*duv2[1] - duv2[0]*duv1[1]
		if det == 0 {
			return
		}
		r := 1 / det

		tangent := edge1.Mul(duv2[1]).Sub(edge2.Mul(duv1[1])).Mul(r)
		bitangent := edge2.Mul(duv1[0]).Sub(edge1.Mul(duv2[0])).Mul(r)

		for _, v := range [3]int{a, b, c} {
			tangents.AddVec3(v, tangent)
			bitangents.AddVec3(v, bitangent)
		}
	})
}
