package scenefile

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/anm"
	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/utils"
)

// Loaded is an imported scene with the runners of its animations
type Loaded struct {
	Scene   *r3d.Scene
	Runners []*anm.Runner
}

func parseWrap(s string) (r3d.Wrap, error) {
	switch w := r3d.Wrap(s); w {
	case "":
		return r3d.WrapRepeat, nil
	case r3d.WrapRepeat, r3d.WrapClamp, r3d.WrapMirror:
		return w, nil
	}
	return "", errors.Errorf("unknown wrap mode %q", s)
}

func parseFilter(s string) (r3d.Filter, error) {
	switch f := r3d.Filter(s); f {
	case "":
		return r3d.FilterLinear, nil
	case r3d.FilterNearest, r3d.FilterLinear:
		return f, nil
	}
	return "", errors.Errorf("unknown filter %q", s)
}

func colorOr(c *Color, def utils.ColorFloat) utils.ColorFloat {
	if c == nil {
		return def
	}
	return c.ColorFloat()
}

func newCamera(c *Camera) r3d.Camera {
	switch c.Type {
	case CameraPerspective:
		p := c.Perspective
		return r3d.NewPerspectiveCamera(p.Yfov, p.Aspect, p.Znear, p.Zfar)
	case CameraOrthographic:
		o := c.Orthographic
		return r3d.NewOrthographicCamera(o.Left, o.Right, o.Top, o.Bottom, o.Znear, o.Zfar)
	case CameraOblique:
		o := c.Oblique
		return r3d.NewObliqueCamera(o.Left, o.Right, o.Top, o.Bottom, o.Znear, o.Zfar, o.Theta, o.Phi)
	}
	return nil
}

// Import builds the scene graph from a document. All node records are
// created first, children are wired by index in a second pass. Nothing
// is returned unless the whole document resolves.
func Import(doc *Document) (*Loaded, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	images := make([]*r3d.Image, len(doc.Images))
	for i, img := range doc.Images {
		images[i] = &r3d.Image{URI: img.URI}
	}

	textures := make([]*r3d.Texture, len(doc.Textures))
	for i, t := range doc.Textures {
		tex := r3d.NewTexture(images[*t.Source])
		tex.WrapS, _ = parseWrap(t.WrapS)
		tex.WrapT, _ = parseWrap(t.WrapT)
		tex.MinFilter, _ = parseFilter(t.MinFilter)
		tex.MagFilter, _ = parseFilter(t.MagFilter)
		tex.FlipY = t.FlipY
		textures[i] = tex
	}

	materials := make([]r3d.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		var maps []*r3d.Texture
		for _, t := range m.Textures {
			maps = append(maps, textures[t])
		}
		switch m.Type {
		case MaterialBasic:
			bm := r3d.NewBasicMaterial(colorOr(m.Color, utils.ColorWhite))
			bm.Maps = maps
			materials[i] = bm
		case MaterialPhong:
			pm := r3d.NewPhongMaterial(colorOr(m.Diffuse, utils.ColorWhite))
			pm.Ambient = colorOr(m.Ambient, pm.Ambient)
			pm.Specular = colorOr(m.Specular, pm.Specular)
			if m.Shininess != nil {
				pm.Shininess = *m.Shininess
			}
			pm.Maps = maps
			materials[i] = pm
		}
	}

	meshes := make([]*r3d.Mesh, len(doc.Meshes))
	for i, m := range doc.Meshes {
		var material r3d.Material
		if m.Material != nil {
			material = materials[*m.Material]
		}
		mesh, err := r3d.NewPrimitiveMesh(m.Primitive, m.Params, material)
		if err != nil {
			return nil, errors.Wrapf(err, "meshes[%d]", i)
		}
		meshes[i] = mesh
	}

	cameras := make([]r3d.Camera, len(doc.Cameras))
	for i, c := range doc.Cameras {
		cameras[i] = newCamera(c)
	}

	sceneIndex := *doc.Scene
	nodes := make([]*r3d.Node, len(doc.Nodes))
	var scene *r3d.Scene
	var activeCamera *r3d.Node
	for i, dn := range doc.Nodes {
		n := r3d.NewNodeWithTransform(dn.Name, r3d.Transform{
			Position: mgl64.Vec3(*dn.Translation),
			Rotation: r3d.EulerFromVec3(mgl64.Vec3(*dn.Rotation)),
			Scale:    mgl64.Vec3(*dn.Scale),
		})
		if dn.Mesh != nil {
			n.Mesh = meshes[*dn.Mesh]
		}
		if dn.Camera != nil {
			n.Camera = cameras[*dn.Camera]
			if dn.ActiveCamera {
				activeCamera = n
			}
		}
		if i == sceneIndex {
			scene = r3d.NewScene(dn.Name)
			scene.Node = n
			scene.Background = colorOr(dn.Background, scene.Background)
			scene.LightColor = colorOr(dn.LightColor, scene.LightColor)
			if dn.LightDirection != nil {
				scene.LightDirection = mgl64.Vec3(*dn.LightDirection)
			}
		}
		nodes[i] = n
	}

	for i, dn := range doc.Nodes {
		for _, c := range dn.Children {
			nodes[i].AddChild(nodes[c])
		}
	}

	if scene == nil {
		return nil, ErrNoScene
	}
	if activeCamera == nil {
		return nil, ErrNoActiveCamera
	}
	scene.ActiveCamera = activeCamera
	for _, t := range textures {
		scene.AddTexture(t)
	}
	for _, m := range materials {
		scene.AddMaterial(m)
	}

	loaded := &Loaded{Scene: scene}
	for i, a := range doc.Animations {
		tween := anm.TweenLinear
		if a.Tween != "" {
			tween, _ = anm.ParseTween(a.Tween)
		}
		target := nodes[*a.Target]
		if !scene.IsAncestorOf(target) {
			return nil, errors.Errorf("animations[%d].target: node %d is not part of the scene", i, *a.Target)
		}
		r := anm.NewRunner(target, a.Clip, a.FPS, tween)
		r.Reverse = a.Reverse
		r.IsPlaying = a.Playing
		if len(a.Clip.Frames) == 0 {
			r.AddFrame()
		}
		loaded.Runners = append(loaded.Runners, r)
	}

	return loaded, nil
}

// Load decodes, validates and imports a document
func Load(r io.Reader) (*Loaded, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Import(doc)
}
