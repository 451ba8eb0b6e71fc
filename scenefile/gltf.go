package scenefile

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/utils/gltfutils"
)

func vec3f(v [3]float64) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func color4f(c [4]float64) *[4]float32 {
	return &[4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
}

func float32p(f float64) *float32 {
	v := float32(f)
	return &v
}

func gltfSampler(t *r3d.Texture) *gltf.Sampler {
	s := &gltf.Sampler{}
	wrap := func(w r3d.Wrap) gltf.WrappingMode {
		switch w {
		case r3d.WrapClamp:
			return gltf.WrapClampToEdge
		case r3d.WrapMirror:
			return gltf.WrapMirroredRepeat
		}
		return gltf.WrapRepeat
	}
	s.WrapS, s.WrapT = wrap(t.WrapS), wrap(t.WrapT)
	if t.MagFilter == r3d.FilterNearest {
		s.MagFilter = gltf.MagNearest
	} else {
		s.MagFilter = gltf.MagLinear
	}
	if t.MinFilter == r3d.FilterNearest {
		s.MinFilter = gltf.MinNearest
	} else {
		s.MinFilter = gltf.MinLinear
	}
	return s
}

func exportGLTFTexture(t *r3d.Texture, gc *gltfutils.GLTFCacher) uint32 {
	return gc.GetCachedOr(t, func() interface{} {
		doc := gc.Doc
		image := gc.GetCachedOr(t.Image, func() interface{} {
			doc.Images = append(doc.Images, &gltf.Image{URI: t.Image.URI})
			return uint32(len(doc.Images) - 1)
		}).(uint32)

		doc.Samplers = append(doc.Samplers, gltfSampler(t))
		doc.Textures = append(doc.Textures, &gltf.Texture{
			Sampler: gltf.Index(uint32(len(doc.Samplers) - 1)),
			Source:  gltf.Index(image),
		})
		return uint32(len(doc.Textures) - 1)
	}).(uint32)
}

func exportGLTFMaterial(m r3d.Material, gc *gltfutils.GLTFCacher) uint32 {
	return gc.GetCachedOr(m, func() interface{} {
		pbr := &gltf.PBRMetallicRoughness{
			MetallicFactor: float32p(0),
		}
		switch mm := m.(type) {
		case *r3d.BasicMaterial:
			pbr.BaseColorFactor = color4f(mm.Color)
		case *r3d.PhongMaterial:
			pbr.BaseColorFactor = color4f(mm.Diffuse)
			// shininess 0..128 roughly maps to roughness 1..0
			roughness := 1 - mm.Shininess/128
			if roughness < 0 {
				roughness = 0
			}
			pbr.RoughnessFactor = float32p(roughness)
		}
		for _, t := range m.Textures() {
			if t.Image == nil {
				continue
			}
			pbr.BaseColorTexture = &gltf.TextureInfo{Index: exportGLTFTexture(t, gc)}
			break
		}

		gc.Doc.Materials = append(gc.Doc.Materials, &gltf.Material{
			Name:                 string(m.Type()),
			DoubleSided:          true,
			PBRMetallicRoughness: pbr,
		})
		return uint32(len(gc.Doc.Materials) - 1)
	}).(uint32)
}

func exportGLTFMesh(m *r3d.Mesh, gc *gltfutils.GLTFCacher) (uint32, bool) {
	g := m.Geometry
	if g == nil || g.Attribute(r3d.AttributePosition) == nil {
		return 0, false
	}
	idx := gc.GetCachedOr(m, func() interface{} {
		doc := gc.Doc
		attributes := make(map[string]uint32)

		pos := g.Attribute(r3d.AttributePosition)
		positions := make([][3]float32, pos.Count())
		for i := range positions {
			positions[i] = vec3f(pos.Vec3(i))
		}
		attributes[gltf.POSITION] = modeler.WritePosition(doc, positions)

		if nrm := g.Attribute(r3d.AttributeNormal); nrm != nil {
			normals := make([][3]float32, nrm.Count())
			for i := range normals {
				normals[i] = vec3f(r3d.Normalize(nrm.Vec3(i)))
			}
			attributes[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
		}

		if uv := g.Attribute(r3d.AttributeUV); uv != nil {
			uvs := make([][2]float32, uv.Count())
			for i := range uvs {
				v := uv.Vec2(i)
				uvs[i] = [2]float32{float32(v[0]), float32(v[1])}
			}
			attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uvs)
		}

		primitive := &gltf.Primitive{Attributes: attributes}
		if g.IsIndexed() {
			primitive.Indices = gltf.Index(modeler.WriteIndices(doc, g.Indices))
		}
		if m.Material != nil {
			primitive.Material = gltf.Index(exportGLTFMaterial(m.Material, gc))
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       m.Primitive.Tag,
			Primitives: []*gltf.Primitive{primitive},
		})
		return uint32(len(doc.Meshes) - 1)
	}).(uint32)
	return idx, true
}

func exportGLTFCamera(c r3d.Camera, gc *gltfutils.GLTFCacher) uint32 {
	return gc.GetCachedOr(c, func() interface{} {
		gcam := &gltf.Camera{Name: string(c.Kind())}
		switch cc := c.(type) {
		case *r3d.PerspectiveCamera:
			gcam.Perspective = &gltf.Perspective{
				Yfov:        float32(cc.Fovy),
				AspectRatio: float32p(cc.Aspect),
				Znear:       float32(cc.Near),
				Zfar:        float32p(cc.Far),
			}
		case *r3d.OrthographicCamera:
			gcam.Orthographic = gltfOrthographic(cc)
		case *r3d.ObliqueCamera:
			// glTF has no oblique projection
			gcam.Orthographic = gltfOrthographic(&cc.OrthographicCamera)
		}
		gc.Doc.Cameras = append(gc.Doc.Cameras, gcam)
		return uint32(len(gc.Doc.Cameras) - 1)
	}).(uint32)
}

func gltfOrthographic(c *r3d.OrthographicCamera) *gltf.Orthographic {
	return &gltf.Orthographic{
		Xmag:  float32((c.Right - c.Left) / 2),
		Ymag:  float32((c.Top - c.Bottom) / 2),
		Znear: float32(c.Near),
		Zfar:  float32(c.Far),
	}
}

func exportGLTFNode(n *r3d.Node, gc *gltfutils.GLTFCacher) uint32 {
	return gc.GetCachedOr(n, func() interface{} {
		t := n.Transform()
		q := t.Rotation.Quat()
		gnode := &gltf.Node{
			Name:        n.Name(),
			Translation: vec3f(t.Position),
			Rotation:    [4]float32{float32(q.V[0]), float32(q.V[1]), float32(q.V[2]), float32(q.W)},
			Scale:       vec3f(t.Scale),
		}
		if n.Mesh != nil {
			if mesh, ok := exportGLTFMesh(n.Mesh, gc); ok {
				gnode.Mesh = gltf.Index(mesh)
			}
		}
		if n.Camera != nil {
			gnode.Camera = gltf.Index(exportGLTFCamera(n.Camera, gc))
		}

		node := uint32(len(gc.Doc.Nodes))
		gc.Doc.Nodes = append(gc.Doc.Nodes, gnode)
		for _, c := range n.Children() {
			gnode.Children = append(gnode.Children, exportGLTFNode(c, gc))
		}
		return node
	}).(uint32)
}

// ExportGLTFDocument converts the scene graph into a glTF document with
// the scene node as the single root
func ExportGLTFDocument(scene *r3d.Scene) *gltf.Document {
	gc := gltfutils.NewCacher()
	root := exportGLTFNode(scene.Node, gc)
	gc.Doc.Scenes[0].Name = scene.Name()
	gc.Doc.Scenes[0].Nodes = []uint32{root}
	return gc.Doc
}

// ExportGLTF writes the scene as binary glTF. cacheDir may be empty.
func ExportGLTF(w io.Writer, scene *r3d.Scene, cacheDir string) error {
	return gltfutils.ExportBinary(w, ExportGLTFDocument(scene), cacheDir, scene.Name())
}
