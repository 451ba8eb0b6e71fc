package scenefile

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/anm"
	"github.com/mogaika/scene_editor/r3d"
)

type exporter struct {
	doc *Document

	nodes     map[*r3d.Node]int
	meshes    map[*r3d.Mesh]int
	materials map[r3d.Material]int
	textures  map[*r3d.Texture]int
	images    map[*r3d.Image]int
	cameras   map[r3d.Camera]int
}

// Export flattens the scene. Nodes get indices in pre-order of first
// visit, meshes, materials, textures, images and cameras are stored once
// per object and referenced by index.
func Export(scene *r3d.Scene, runners []*anm.Runner) (*Document, error) {
	e := &exporter{
		doc:       &Document{Scene: index(0)},
		nodes:     make(map[*r3d.Node]int),
		meshes:    make(map[*r3d.Mesh]int),
		materials: make(map[r3d.Material]int),
		textures:  make(map[*r3d.Texture]int),
		images:    make(map[*r3d.Image]int),
		cameras:   make(map[r3d.Camera]int),
	}

	// scene lists go first so unused entries survive and order is stable
	for _, t := range scene.Textures {
		e.texture(t)
	}
	for _, m := range scene.Materials {
		e.material(m)
	}

	var order []*r3d.Node
	scene.Walk(func(n *r3d.Node) bool {
		if _, seen := e.nodes[n]; seen {
			return false
		}
		e.nodes[n] = len(order)
		order = append(order, n)
		return true
	})

	for _, n := range order {
		e.doc.Nodes = append(e.doc.Nodes, e.node(n, scene))
	}

	if scene.ActiveCamera == nil {
		return nil, ErrNoActiveCamera
	}
	active, ok := e.nodes[scene.ActiveCamera]
	if !ok || scene.ActiveCamera.Camera == nil {
		return nil, errors.Wrap(ErrNoActiveCamera, "active camera is not a camera node of the scene")
	}
	e.doc.Nodes[active].ActiveCamera = true

	for i, r := range runners {
		target, ok := e.nodes[r.Target]
		if !ok {
			return nil, errors.Errorf("animation %d (%q): target is not part of the scene", i, r.Clip.Name)
		}
		e.doc.Animations = append(e.doc.Animations, &Animation{
			Target:  index(target),
			FPS:     r.FPS,
			Tween:   string(r.Tween),
			Reverse: r.Reverse,
			Playing: r.IsPlaying,
			Clip:    r.Clip,
		})
	}

	return e.doc, nil
}

func (e *exporter) node(n *r3d.Node, scene *r3d.Scene) *Node {
	t := n.Transform()
	dn := &Node{
		Name:        n.Name(),
		Translation: newVec3(t.Position),
		Rotation:    newVec3(t.Rotation.Vec3()),
		Scale:       newVec3(t.Scale),
		Children:    make([]int, 0, len(n.Children())),
	}
	for _, c := range n.Children() {
		dn.Children = append(dn.Children, e.nodes[c])
	}
	if n.Mesh != nil {
		dn.Mesh = index(e.mesh(n.Mesh))
	}
	if n.Camera != nil {
		dn.Camera = index(e.camera(n.Camera))
	}
	if n == scene.Node {
		dn.Background = newColor(scene.Background)
		dn.LightDirection = newVec3(scene.LightDirection)
		dn.LightColor = newColor(scene.LightColor)
	}
	return dn
}

func (e *exporter) mesh(m *r3d.Mesh) int {
	if i, ok := e.meshes[m]; ok {
		return i
	}
	dm := &Mesh{
		Primitive: m.Primitive.Tag,
		Params:    m.Primitive.Params,
	}
	if m.Material != nil {
		dm.Material = index(e.material(m.Material))
	}
	i := len(e.doc.Meshes)
	e.meshes[m] = i
	e.doc.Meshes = append(e.doc.Meshes, dm)
	return i
}

func (e *exporter) material(m r3d.Material) int {
	if i, ok := e.materials[m]; ok {
		return i
	}
	dm := &Material{Type: string(m.Type())}
	for _, t := range m.Textures() {
		dm.Textures = append(dm.Textures, e.texture(t))
	}
	switch mm := m.(type) {
	case *r3d.BasicMaterial:
		dm.Color = newColor(mm.Color)
	case *r3d.PhongMaterial:
		dm.Ambient = newColor(mm.Ambient)
		dm.Diffuse = newColor(mm.Diffuse)
		dm.Specular = newColor(mm.Specular)
		shininess := mm.Shininess
		dm.Shininess = &shininess
	}
	i := len(e.doc.Materials)
	e.materials[m] = i
	e.doc.Materials = append(e.doc.Materials, dm)
	return i
}

func (e *exporter) texture(t *r3d.Texture) int {
	if i, ok := e.textures[t]; ok {
		return i
	}
	dt := &Texture{
		WrapS:     string(t.WrapS),
		WrapT:     string(t.WrapT),
		MinFilter: string(t.MinFilter),
		MagFilter: string(t.MagFilter),
		FlipY:     t.FlipY,
	}
	if t.Image != nil {
		dt.Source = index(e.image(t.Image))
	}
	i := len(e.doc.Textures)
	e.textures[t] = i
	e.doc.Textures = append(e.doc.Textures, dt)
	return i
}

func (e *exporter) image(img *r3d.Image) int {
	if i, ok := e.images[img]; ok {
		return i
	}
	i := len(e.doc.Images)
	e.images[img] = i
	e.doc.Images = append(e.doc.Images, &Image{URI: img.URI})
	return i
}

func (e *exporter) camera(c r3d.Camera) int {
	if i, ok := e.cameras[c]; ok {
		return i
	}
	dc := &Camera{Type: string(c.Kind())}
	switch cc := c.(type) {
	case *r3d.PerspectiveCamera:
		dc.Perspective = &Perspective{Yfov: cc.Fovy, Aspect: cc.Aspect, Znear: cc.Near, Zfar: cc.Far}
	case *r3d.OrthographicCamera:
		dc.Orthographic = orthographic(cc)
	case *r3d.ObliqueCamera:
		dc.Oblique = &Oblique{Orthographic: *orthographic(&cc.OrthographicCamera), Theta: cc.Theta, Phi: cc.Phi}
	}
	i := len(e.doc.Cameras)
	e.cameras[c] = i
	e.doc.Cameras = append(e.doc.Cameras, dc)
	return i
}

func orthographic(c *r3d.OrthographicCamera) *Orthographic {
	return &Orthographic{Left: c.Left, Right: c.Right, Top: c.Top, Bottom: c.Bottom, Znear: c.Near, Zfar: c.Far}
}

// Save exports the scene and writes it as indented JSON
func Save(w io.Writer, scene *r3d.Scene, runners []*anm.Runner) error {
	doc, err := Export(scene, runners)
	if err != nil {
		return err
	}
	return doc.Encode(w)
}
