package scenefile

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/anm"
	"github.com/mogaika/scene_editor/r3d"
)

var (
	ErrNoScene               = errors.New("document has no scene node")
	ErrNoActiveCamera        = errors.New("no active camera")
	ErrMultipleActiveCameras = errors.New("more than one active camera")
)

func checkIndex(field string, idx, count int, what string) error {
	if idx < 0 || idx >= count {
		return errors.Errorf("%s: index %d out of range (%d %s)", field, idx, count, what)
	}
	return nil
}

func checkRef(field string, idx *int, count int, what string, required bool) error {
	if idx == nil {
		if required {
			return errors.Errorf("%s: missing", field)
		}
		return nil
	}
	return checkIndex(field, *idx, count, what)
}

// Validate checks the document structure and every cross reference.
// A document that passes can be imported without referential errors.
func (doc *Document) Validate() error {
	if doc.Scene == nil {
		return errors.Wrap(ErrNoScene, "scene: missing")
	}
	if err := checkIndex("scene", *doc.Scene, len(doc.Nodes), "nodes"); err != nil {
		return errors.Wrap(ErrNoScene, err.Error())
	}

	for i, img := range doc.Images {
		if img == nil || img.URI == "" {
			return errors.Errorf("images[%d].uri: missing", i)
		}
	}

	for i, tex := range doc.Textures {
		if tex == nil {
			return errors.Errorf("textures[%d]: null", i)
		}
		if err := checkRef(fmt.Sprintf("textures[%d].source", i), tex.Source, len(doc.Images), "images", true); err != nil {
			return err
		}
		for _, w := range []struct{ name, value string }{{"wrapS", tex.WrapS}, {"wrapT", tex.WrapT}} {
			if _, err := parseWrap(w.value); err != nil {
				return errors.Wrapf(err, "textures[%d].%s", i, w.name)
			}
		}
		for _, f := range []struct{ name, value string }{{"minFilter", tex.MinFilter}, {"magFilter", tex.MagFilter}} {
			if _, err := parseFilter(f.value); err != nil {
				return errors.Wrapf(err, "textures[%d].%s", i, f.name)
			}
		}
	}

	for i, mat := range doc.Materials {
		if mat == nil {
			return errors.Errorf("materials[%d]: null", i)
		}
		switch mat.Type {
		case MaterialBasic, MaterialPhong:
		default:
			return errors.Errorf("materials[%d].type: unknown material type %q", i, mat.Type)
		}
		for j, t := range mat.Textures {
			if err := checkIndex(fmt.Sprintf("materials[%d].textures[%d]", i, j), t, len(doc.Textures), "textures"); err != nil {
				return err
			}
		}
	}

	for i, mesh := range doc.Meshes {
		if mesh == nil {
			return errors.Errorf("meshes[%d]: null", i)
		}
		spec, ok := r3d.LookupPrimitive(mesh.Primitive)
		if !ok {
			return errors.Errorf("meshes[%d].primitive: unknown primitive %q", i, mesh.Primitive)
		}
		for _, p := range spec.Params {
			if _, ok := mesh.Params[p]; !ok {
				return errors.Errorf("meshes[%d].params.%s: missing", i, p)
			}
		}
		if err := checkRef(fmt.Sprintf("meshes[%d].material", i), mesh.Material, len(doc.Materials), "materials", false); err != nil {
			return err
		}
	}

	for i, cam := range doc.Cameras {
		if cam == nil {
			return errors.Errorf("cameras[%d]: null", i)
		}
		missing := false
		switch cam.Type {
		case CameraPerspective:
			missing = cam.Perspective == nil
		case CameraOrthographic:
			missing = cam.Orthographic == nil
		case CameraOblique:
			missing = cam.Oblique == nil
		default:
			return errors.Errorf("cameras[%d].type: unknown camera type %q", i, cam.Type)
		}
		if missing {
			return errors.Errorf("cameras[%d].%s: missing", i, cam.Type)
		}
	}

	if err := doc.validateNodes(); err != nil {
		return err
	}

	for i, a := range doc.Animations {
		if a == nil {
			return errors.Errorf("animations[%d]: null", i)
		}
		if err := checkRef(fmt.Sprintf("animations[%d].target", i), a.Target, len(doc.Nodes), "nodes", true); err != nil {
			return err
		}
		if a.Clip == nil {
			return errors.Errorf("animations[%d].clip: missing", i)
		}
		for j, f := range a.Clip.Frames {
			if err := checkPath(fmt.Sprintf("animations[%d].clip.frames[%d]", i, j), f); err != nil {
				return err
			}
		}
		if a.FPS <= 0 {
			return errors.Errorf("animations[%d].fps: must be positive, got %v", i, a.FPS)
		}
		if a.Tween != "" {
			if _, err := anm.ParseTween(a.Tween); err != nil {
				return errors.Wrapf(err, "animations[%d].tween", i)
			}
		}
	}

	return nil
}

func (doc *Document) validateNodes() error {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}

	activeCameras := 0
	for i, n := range doc.Nodes {
		if n == nil {
			return errors.Errorf("nodes[%d]: null", i)
		}
		if n.Translation == nil {
			return errors.Errorf("nodes[%d].translation: missing", i)
		}
		if n.Rotation == nil {
			return errors.Errorf("nodes[%d].rotation: missing", i)
		}
		if n.Scale == nil {
			return errors.Errorf("nodes[%d].scale: missing", i)
		}
		if n.Children == nil {
			return errors.Errorf("nodes[%d].children: missing", i)
		}
		for j, c := range n.Children {
			field := fmt.Sprintf("nodes[%d].children[%d]", i, j)
			if err := checkIndex(field, c, len(doc.Nodes), "nodes"); err != nil {
				return err
			}
			if c == *doc.Scene {
				return errors.Errorf("%s: scene node %d can not be a child", field, c)
			}
			if parents[c] != -1 {
				return errors.Errorf("%s: node %d already has parent %d", field, c, parents[c])
			}
			parents[c] = i
		}
		if err := checkRef(fmt.Sprintf("nodes[%d].mesh", i), n.Mesh, len(doc.Meshes), "meshes", false); err != nil {
			return err
		}
		if err := checkRef(fmt.Sprintf("nodes[%d].camera", i), n.Camera, len(doc.Cameras), "cameras", false); err != nil {
			return err
		}
		if n.ActiveCamera {
			if n.Camera == nil {
				return errors.Errorf("nodes[%d].activeCamera: node has no camera", i)
			}
			activeCameras++
		}
	}

	for i := range doc.Nodes {
		steps := 0
		for p := parents[i]; p != -1; p = parents[p] {
			if p == i || steps > len(doc.Nodes) {
				return errors.Errorf("nodes[%d]: parent cycle", i)
			}
			steps++
		}
	}

	switch {
	case activeCameras == 0:
		return ErrNoActiveCamera
	case activeCameras > 1:
		return errors.Wrapf(ErrMultipleActiveCameras, "%d cameras marked active", activeCameras)
	}
	return nil
}

// checkPath rejects null entries anywhere in a frame path tree
func checkPath(field string, p *anm.Path) error {
	if p == nil {
		return errors.Errorf("%s: null", field)
	}
	names := make([]string, 0, len(p.Children))
	for name := range p.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := checkPath(field+".children."+name, p.Children[name]); err != nil {
			return err
		}
	}
	return nil
}
