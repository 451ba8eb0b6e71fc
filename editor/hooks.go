package editor

import (
	"bytes"
	"context"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/scenefile"
	"github.com/mogaika/scene_editor/utils"
	"github.com/mogaika/scene_editor/utils/gltfutils"
	"github.com/mogaika/scene_editor/vfs"
)

// Load replaces the session with the scene document in data
func (e *Editor) Load(ctx context.Context, data []byte) error {
	return e.Do(ctx, func(s *State) error {
		if err := e.load(s, data); err != nil {
			return err
		}
		s.File = ""
		s.fileData = nil
		return nil
	})
}

// Files lists the scene documents of the project directory
func (e *Editor) Files() ([]string, error) {
	if e.opts.Dir == nil {
		return nil, errors.New("no project directory")
	}
	return vfs.ListFiles(e.opts.Dir, ".json")
}

func (e *Editor) Open(ctx context.Context, file string) error {
	if e.opts.Dir == nil {
		return errors.New("no project directory")
	}
	data, err := vfs.ReadFile(e.opts.Dir, file)
	if err != nil {
		return err
	}
	return e.Do(ctx, func(s *State) error {
		if err := e.load(s, data); err != nil {
			return errors.Wrapf(err, "open %q", file)
		}
		s.File = file
		s.fileData = data
		e.watch(file)
		log.Printf("[editor] opened %q", file)
		return nil
	})
}

// Save writes the scene document to file, or to the open file when file
// is empty
func (e *Editor) Save(ctx context.Context, file string) error {
	if e.opts.Dir == nil {
		return errors.New("no project directory")
	}
	return e.Do(ctx, func(s *State) error {
		if file == "" {
			file = s.File
		}
		if file == "" {
			return errors.New("no file to save to")
		}
		var buf bytes.Buffer
		if err := scenefile.Save(&buf, s.Scene, s.Runners); err != nil {
			return err
		}
		data := buf.Bytes()
		if err := vfs.WriteFile(e.opts.Dir, file, bytes.NewReader(data)); err != nil {
			return err
		}
		if file != s.File {
			s.File = file
			e.watch(file)
		}
		s.fileData = data
		log.Printf("[editor] saved %q", file)
		return nil
	})
}

func (e *Editor) Document(ctx context.Context) (doc *scenefile.Document, err error) {
	err = e.Do(ctx, func(s *State) error {
		doc, err = scenefile.Export(s.Scene, s.Runners)
		return err
	})
	return doc, err
}

// ExportGLTF writes the scene as .glb, the document is built on the loop
// and encoded by the caller goroutine
func (e *Editor) ExportGLTF(ctx context.Context, w io.Writer) error {
	var name string
	var doc *gltf.Document
	err := e.Do(ctx, func(s *State) error {
		name = s.Scene.Name()
		doc = scenefile.ExportGLTFDocument(s.Scene)
		return nil
	})
	if err != nil {
		return err
	}
	return gltfutils.ExportBinary(w, doc, e.opts.GLTFCacheDir, name)
}

// DumpScene is a human readable dump of the scene document
func (e *Editor) DumpScene(ctx context.Context) (string, error) {
	doc, err := e.Document(ctx)
	if err != nil {
		return "", err
	}
	return utils.SDump(doc), nil
}

func (s *State) node(id uuid.UUID) (*r3d.Node, error) {
	if n := s.Scene.FindByID(id); n != nil {
		return n, nil
	}
	return nil, errors.Wrapf(ErrNodeNotFound, "id %v", id)
}

// uniqueName keeps sibling names distinct, animation paths are keyed by
// names
func (e *Editor) uniqueName(parent *r3d.Node, name string, except *r3d.Node) string {
	taken := func(name string) bool {
		c := parent.ChildByName(name)
		return c != nil && c != except
	}
	if name != "" && !taken(name) {
		return name
	}
	return e.names.RandomName(taken)
}

// AddNode creates a child of parent. A non empty primitive attaches a
// mesh with default parameters sharing the first scene material.
func (e *Editor) AddNode(ctx context.Context, parent uuid.UUID, name, primitive string) (id uuid.UUID, err error) {
	err = e.Do(ctx, func(s *State) error {
		p, err := s.node(parent)
		if err != nil {
			return err
		}
		n := r3d.NewNode("")
		n.SetName(e.uniqueName(p, name, nil))
		if primitive != "" {
			mesh, err := r3d.NewPrimitiveMesh(primitive, DefaultPrimitiveParams(primitive), s.defaultMaterial())
			if err != nil {
				return err
			}
			n.Mesh = mesh
		}
		p.AddChild(n)
		n.MarkDirty()
		id = n.ID()
		return nil
	})
	return id, err
}

func (s *State) defaultMaterial() r3d.Material {
	if len(s.Scene.Materials) == 0 {
		s.Scene.AddMaterial(r3d.NewPhongMaterial(utils.ColorFloat{0.8, 0.8, 0.8, 1}))
	}
	return s.Scene.Materials[0]
}

// DefaultPrimitiveParams returns a unit sized parameter set for the
// built in primitives
func DefaultPrimitiveParams(tag string) map[string]float64 {
	switch tag {
	case "cube":
		return map[string]float64{"width": 1, "height": 1, "depth": 1}
	case "plane":
		return map[string]float64{"width": 1, "height": 1}
	case "torus":
		return map[string]float64{"radius": 1, "tube": 0.4, "radialSegments": 12, "tubularSegments": 48}
	case "pyramidhollow", "cubehollow":
		return map[string]float64{"width": 1, "height": 1, "depth": 1, "thickness": 0.1}
	}
	return map[string]float64{}
}

// DeleteNode removes the subtree rooted at id together with the runners
// animating inside it. The scene root and the active camera can not be
// removed.
func (e *Editor) DeleteNode(ctx context.Context, id uuid.UUID) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		if n == s.Scene.Node {
			return errors.New("can not delete the scene node")
		}
		if cam := s.Scene.ActiveCamera; cam == n || n.IsAncestorOf(cam) {
			return errors.Errorf("node %q holds the active camera", n.Name())
		}
		inside := func(other *r3d.Node) bool {
			return other != nil && (other == n || n.IsAncestorOf(other))
		}

		runners := s.Runners[:0]
		for _, r := range s.Runners {
			if !inside(r.Target) {
				runners = append(runners, r)
			}
		}
		for i := len(runners); i < len(s.Runners); i++ {
			s.Runners[i] = nil
		}
		s.Runners = runners

		if inside(s.Focused) {
			s.Focused = nil
		}
		n.RemoveFromParent()
		return nil
	})
}

// Reparent moves id under parent keeping its local transform
func (e *Editor) Reparent(ctx context.Context, id, parent uuid.UUID) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		p, err := s.node(parent)
		if err != nil {
			return err
		}
		if n == s.Scene.Node {
			return errors.New("can not reparent the scene node")
		}
		if n == p || n.IsAncestorOf(p) {
			return errors.Errorf("can not move %q into its own subtree", n.Name())
		}
		n.SetName(e.uniqueName(p, n.Name(), n))
		p.AddChild(n)
		n.MarkDirty()
		return nil
	})
}

func (e *Editor) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		if p := n.Parent(); p != nil {
			if c := p.ChildByName(name); c != nil && c != n {
				return errors.Errorf("%q already has a child named %q", p.Name(), name)
			}
		}
		n.SetName(name)
		return nil
	})
}

func (e *Editor) SetTransform(ctx context.Context, id uuid.UUID, t r3d.Transform) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		n.SetTransform(t)
		return nil
	})
}

// Focus selects the node keyframe edits apply to
func (e *Editor) Focus(ctx context.Context, id uuid.UUID) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		s.Focused = n
		return nil
	})
}

func (e *Editor) Focused(ctx context.Context) (id uuid.UUID, ok bool, err error) {
	err = e.Do(ctx, func(s *State) error {
		if s.Focused != nil {
			id, ok = s.Focused.ID(), true
		}
		return nil
	})
	return id, ok, err
}

// SetPerspective attaches a perspective camera to id or updates the
// existing one. fovy is in radians.
func (e *Editor) SetPerspective(ctx context.Context, id uuid.UUID, fovy, aspect, near, far float64) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		if cam, ok := n.Camera.(*r3d.PerspectiveCamera); ok {
			cam.Set(fovy, aspect, near, far)
		} else {
			n.Camera = r3d.NewPerspectiveCamera(fovy, aspect, near, far)
			n.MarkDirty()
		}
		return nil
	})
}

func (e *Editor) SetOrthographic(ctx context.Context, id uuid.UUID, left, right, top, bottom, near, far float64) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		switch cam := n.Camera.(type) {
		case *r3d.OrthographicCamera:
			cam.Set(left, right, top, bottom, near, far)
		case *r3d.ObliqueCamera:
			cam.Set(left, right, top, bottom, near, far)
		default:
			n.Camera = r3d.NewOrthographicCamera(left, right, top, bottom, near, far)
			n.MarkDirty()
		}
		return nil
	})
}

// SetActiveCamera makes the camera of id the one the scene renders with
func (e *Editor) SetActiveCamera(ctx context.Context, id uuid.UUID) error {
	return e.Do(ctx, func(s *State) error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		if n.Camera == nil {
			return errors.Errorf("node %q has no camera", n.Name())
		}
		s.Scene.ActiveCamera = n
		return nil
	})
}
