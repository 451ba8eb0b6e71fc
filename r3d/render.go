package r3d

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/scene_editor/utils"
)

// Tick brings every cached matrix of the tree up to date. World matrices
// are refreshed at dirty nodes (parents before children), then dirty
// camera projections are recomputed.
func Tick(root *Node) {
	tickMatrices(root)
	tickCameras(root)
}

func tickMatrices(n *Node) {
	if n.state == Dirty {
		n.ComputeWorldMatrix(false, true)
		n.state = Clean
	}
	for _, c := range n.children {
		tickMatrices(c)
	}
}

func tickCameras(root *Node) {
	root.Walk(func(n *Node) bool {
		if n.Camera != nil && n.Camera.IsCameraDirty() {
			n.Camera.ComputeProjectionMatrix()
			n.Camera.CameraClean()
		}
		return true
	})
}

// DrawItem is everything needed for one draw call of a mesh node
type DrawItem struct {
	Node       *Node
	World      mgl64.Mat4
	Attributes map[string]*BufferAttribute
	Indices    []uint32
	Uniforms   map[string]interface{}
}

type FrameInfo struct {
	Background     utils.ColorFloat
	ViewProjection mgl64.Mat4
	LightDirection mgl64.Vec3
	LightColor     utils.ColorFloat
}

// Renderer gets the scene flattened in pre-order, one Draw per mesh node
type Renderer interface {
	Begin(frame FrameInfo)
	Draw(item DrawItem)
	End()
}

func Render(scene *Scene, ren Renderer) {
	frame := FrameInfo{
		Background:     scene.Background,
		ViewProjection: mgl64.Ident4(),
		LightDirection: scene.LightDirection,
		LightColor:     scene.LightColor,
	}
	if scene.ActiveCamera != nil && scene.ActiveCamera.Camera != nil {
		cam := scene.ActiveCamera.Camera
		frame.ViewProjection = cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	}

	ren.Begin(frame)
	scene.Walk(func(n *Node) bool {
		if n.Mesh == nil {
			return true
		}
		item := DrawItem{Node: n, World: n.worldMatrix}
		if g := n.Mesh.Geometry; g != nil {
			item.Attributes = g.Attributes
			item.Indices = g.Indices
		}
		if m := n.Mesh.Material; m != nil {
			item.Uniforms = m.Uniforms()
		}
		ren.Draw(item)
		return true
	})
	ren.End()
}

// DrawList is a Renderer that keeps the frame for later consumption
type DrawList struct {
	Frame FrameInfo
	Items []DrawItem
}

func (dl *DrawList) Begin(frame FrameInfo) {
	dl.Frame = frame
	dl.Items = dl.Items[:0]
}

func (dl *DrawList) Draw(item DrawItem) {
	dl.Items = append(dl.Items, item)
}

func (dl *DrawList) End() {}
