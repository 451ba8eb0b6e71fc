package r3d

import (
	"sort"

	"github.com/pkg/errors"
)

// Primitive names a generated shape and its parameters
type Primitive struct {
	Tag    string
	Params map[string]float64
}

type GeometryGenerator func(params map[string]float64) *BufferGeometry

type PrimitiveSpec struct {
	Tag      string
	Params   []string
	Generate GeometryGenerator
}

var primitives = map[string]*PrimitiveSpec{}

// RegisterPrimitive adds or replaces a primitive. Hosts use it to plug
// in the generators this package does not ship.
func RegisterPrimitive(spec PrimitiveSpec) {
	s := spec
	primitives[spec.Tag] = &s
}

func LookupPrimitive(tag string) (*PrimitiveSpec, bool) {
	spec, ok := primitives[tag]
	return spec, ok
}

func PrimitiveTags() []string {
	tags := make([]string, 0, len(primitives))
	for tag := range primitives {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func init() {
	RegisterPrimitive(PrimitiveSpec{Tag: "cube", Params: []string{"width", "height", "depth"}, Generate: generateCube})
	RegisterPrimitive(PrimitiveSpec{Tag: "plane", Params: []string{"width", "height"}, Generate: generatePlane})
	RegisterPrimitive(PrimitiveSpec{Tag: "torus", Params: []string{"radius", "tube", "radialSegments", "tubularSegments"}})
	RegisterPrimitive(PrimitiveSpec{Tag: "pyramidhollow", Params: []string{"width", "height", "depth", "thickness"}})
	RegisterPrimitive(PrimitiveSpec{Tag: "cubehollow", Params: []string{"width", "height", "depth", "thickness"}})
}

type Mesh struct {
	Primitive Primitive
	Geometry  *BufferGeometry
	Material  Material
}

// NewPrimitiveMesh validates params against the registered primitive and
// builds its geometry. Primitives without a generator get empty geometry.
func NewPrimitiveMesh(tag string, params map[string]float64, material Material) (*Mesh, error) {
	spec, ok := primitives[tag]
	if !ok {
		return nil, errors.Errorf("unknown primitive %q", tag)
	}
	for _, name := range spec.Params {
		if _, ok := params[name]; !ok {
			return nil, errors.Errorf("primitive %q: missing param %q", tag, name)
		}
	}

	m := &Mesh{
		Primitive: Primitive{Tag: tag, Params: params},
		Material:  material,
	}
	if spec.Generate != nil {
		m.Geometry = spec.Generate(params)
	} else {
		m.Geometry = NewBufferGeometry()
	}
	return m, nil
}

func generatePlane(params map[string]float64) *BufferGeometry {
	hw, hh := params["width"]/2, params["height"]/2

	g := NewBufferGeometry()
	g.SetAttribute(AttributePosition, NewBufferAttribute([]float64{
		-hw, -hh, 0,
		hw, -hh, 0,
		hw, hh, 0,
		-hw, hh, 0,
	}, 3))
	g.SetAttribute(AttributeUV, NewBufferAttribute([]float64{
		0, 0,
		1, 0,
		1, 1,
		0, 1,
	}, 2))
	g.Indices = []uint32{0, 1, 2, 0, 2, 3}
	g.CalculateNormals(true)
	return g
}

func generateCube(params map[string]float64) *BufferGeometry {
	hw, hh, hd := params["width"]/2, params["height"]/2, params["depth"]/2

	// four corners per face, counter clockwise seen from outside
	faces := [6][4][3]float64{
		{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}},
		{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}},
		{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}},
		{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}},
		{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}},
		{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}},
	}

	positions := make([]float64, 0, 6*4*3)
	uvs := make([]float64, 0, 6*4*2)
	indices := make([]uint32, 0, 6*6)
	for iFace, face := range faces {
		for _, corner := range face {
			positions = append(positions, corner[:]...)
		}
		uvs = append(uvs, 0, 0, 1, 0, 1, 1, 0, 1)
		base := uint32(iFace * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	g := NewBufferGeometry()
	g.SetAttribute(AttributePosition, NewBufferAttribute(positions, 3))
	g.SetAttribute(AttributeUV, NewBufferAttribute(uvs, 2))
	g.Indices = indices
	g.CalculateNormals(true)
	return g
}
