package editor

import (
	"context"
	"sort"

	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/utils"
)

type AttributeInfo struct {
	Name     string `json:"name"`
	ItemSize int    `json:"itemSize"`
	Count    int    `json:"count"`
}

// DrawSnapshot describes one draw call, enough for a WebGL front end to
// bind buffers and uniforms
type DrawSnapshot struct {
	Node       string                 `json:"node"`
	Name       string                 `json:"name"`
	Primitive  string                 `json:"primitive"`
	World      [16]float64            `json:"world"`
	Attributes []AttributeInfo        `json:"attributes"`
	IndexCount int                    `json:"indexCount"`
	Uniforms   map[string]interface{} `json:"uniforms"`
}

type FrameSnapshot struct {
	Background     utils.ColorFloat `json:"background"`
	ViewProjection [16]float64      `json:"viewProjection"`
	LightDirection [3]float64       `json:"lightDirection"`
	LightColor     utils.ColorFloat `json:"lightColor"`
	Items          []DrawSnapshot   `json:"items"`
}

func (s *State) snapshot() *FrameSnapshot {
	dl := &s.drawList
	fs := &FrameSnapshot{
		Background:     dl.Frame.Background,
		ViewProjection: utils.Mat4Array(dl.Frame.ViewProjection),
		LightDirection: [3]float64(dl.Frame.LightDirection),
		LightColor:     dl.Frame.LightColor,
		Items:          make([]DrawSnapshot, 0, len(dl.Items)),
	}
	for _, item := range dl.Items {
		ds := DrawSnapshot{
			Node:       item.Node.ID().String(),
			Name:       item.Node.Name(),
			World:      utils.Mat4Array(item.World),
			IndexCount: len(item.Indices),
			Uniforms:   item.Uniforms,
		}
		if item.Node.Mesh != nil {
			ds.Primitive = item.Node.Mesh.Primitive.Tag
		}
		for name, a := range item.Attributes {
			ds.Attributes = append(ds.Attributes, AttributeInfo{Name: name, ItemSize: a.ItemSize, Count: a.Count()})
		}
		sort.Slice(ds.Attributes, func(i, j int) bool { return ds.Attributes[i].Name < ds.Attributes[j].Name })
		fs.Items = append(fs.Items, ds)
	}
	return fs
}

// Frame returns the draw list produced by the last tick
func (e *Editor) Frame(ctx context.Context) (fs *FrameSnapshot, err error) {
	err = e.Do(ctx, func(s *State) error {
		fs = s.snapshot()
		return nil
	})
	return fs, err
}

// AnimationInfo is the runner state as the UI shows it
type AnimationInfo struct {
	Name    string  `json:"name"`
	Target  string  `json:"target"`
	Frames  int     `json:"frames"`
	Frame   int     `json:"frame"`
	FPS     float64 `json:"fps"`
	Tween   string  `json:"tween"`
	Playing bool    `json:"playing"`
	Reverse bool    `json:"reverse"`
}

func (e *Editor) Animations(ctx context.Context) (list []AnimationInfo, err error) {
	err = e.Do(ctx, func(s *State) error {
		list = make([]AnimationInfo, len(s.Runners))
		for i, r := range s.Runners {
			list[i] = AnimationInfo{
				Name:    r.Clip.Name,
				Frames:  r.Len(),
				Frame:   r.CurrentFrame(),
				FPS:     r.FPS,
				Tween:   string(r.Tween),
				Playing: r.IsPlaying,
				Reverse: r.Reverse,
			}
			if r.Target != nil {
				list[i].Target = r.Target.ID().String()
			}
		}
		return nil
	})
	return list, err
}

// NodeInfo is the hierarchy as the UI tree shows it, with ids that stay
// valid for the session
type NodeInfo struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Mesh     string      `json:"mesh,omitempty"`
	Camera   string      `json:"camera,omitempty"`
	Children []*NodeInfo `json:"children"`
}

func nodeInfo(n *r3d.Node) *NodeInfo {
	ni := &NodeInfo{ID: n.ID().String(), Name: n.Name(), Children: make([]*NodeInfo, 0, len(n.Children()))}
	if n.Mesh != nil {
		ni.Mesh = n.Mesh.Primitive.Tag
	}
	if n.Camera != nil {
		ni.Camera = string(n.Camera.Kind())
	}
	for _, c := range n.Children() {
		ni.Children = append(ni.Children, nodeInfo(c))
	}
	return ni
}

func (e *Editor) Tree(ctx context.Context) (tree *NodeInfo, err error) {
	err = e.Do(ctx, func(s *State) error {
		tree = nodeInfo(s.Scene.Node)
		return nil
	})
	return tree, err
}
