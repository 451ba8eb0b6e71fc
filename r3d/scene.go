package r3d

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/scene_editor/utils"
)

// Scene is the root node of a hierarchy plus scene wide state
type Scene struct {
	*Node

	Background     utils.ColorFloat
	Materials      []Material
	Textures       []*Texture
	LightDirection mgl64.Vec3
	LightColor     utils.ColorFloat

	// ActiveCamera is a node inside the scene with a Camera attached
	ActiveCamera *Node
}

func NewScene(name string) *Scene {
	return &Scene{
		Node:           NewNode(name),
		Background:     utils.ColorFloat{0.15, 0.15, 0.2, 1},
		LightDirection: mgl64.Vec3{-1, -1, -1},
		LightColor:     utils.ColorWhite,
	}
}

// AddMaterial registers m unless the same material is already listed
func (s *Scene) AddMaterial(m Material) {
	for _, existing := range s.Materials {
		if existing == m {
			return
		}
	}
	s.Materials = append(s.Materials, m)
}

func (s *Scene) AddTexture(t *Texture) {
	for _, existing := range s.Textures {
		if existing == t {
			return
		}
	}
	s.Textures = append(s.Textures, t)
}

// Images lists every distinct image referenced by the scene textures
func (s *Scene) Images() []*Image {
	var images []*Image
	seen := make(map[*Image]struct{})
	for _, t := range s.Textures {
		if t.Image == nil {
			continue
		}
		if _, ok := seen[t.Image]; !ok {
			seen[t.Image] = struct{}{}
			images = append(images, t.Image)
		}
	}
	return images
}
