package r3d

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// DirtyState tags a cached derived value
type DirtyState uint8

const (
	Clean DirtyState = iota
	Dirty
)

func (s DirtyState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

type Transform struct {
	Position mgl64.Vec3
	Rotation Euler
	Scale    mgl64.Vec3
}

func NewTransform() Transform {
	return Transform{Scale: mgl64.Vec3{1, 1, 1}}
}

func (t Transform) Matrix() mgl64.Mat4 {
	return Compose(t.Position, t.Rotation, t.Scale)
}

/*
Node owns its transform and its children. The parent pointer is a
back reference only: it is never used to keep a node alive and is
rewritten by AddChild/RemoveChild.
*/
type Node struct {
	id   uuid.UUID
	name string

	transform Transform

	parent   *Node
	children []*Node

	localMatrix mgl64.Mat4
	worldMatrix mgl64.Mat4
	state       DirtyState

	Mesh   *Mesh
	Camera Camera
}

func NewNode(name string) *Node {
	return NewNodeWithTransform(name, NewTransform())
}

func NewNodeWithTransform(name string, t Transform) *Node {
	id, err := uuid.NewRandom()
	if err != nil {
		panic(err)
	}
	n := &Node{
		id:          id,
		name:        norm.NFC.String(name),
		transform:   t,
		localMatrix: mgl64.Ident4(),
		worldMatrix: mgl64.Ident4(),
		state:       Dirty,
	}
	return n
}

func (n *Node) ID() uuid.UUID { return n.id }

func (n *Node) Name() string { return n.name }

// SetName stores the name in NFC so animation paths built from user
// input match node names regardless of how the input was normalized.
func (n *Node) SetName(name string) { n.name = norm.NFC.String(name) }

func (n *Node) Parent() *Node { return n.parent }

// Children must not be modified by the caller
func (n *Node) Children() []*Node { return n.children }

func (n *Node) AddChild(child *Node) {
	child.RemoveFromParent()
	child.parent = n
	n.children = append(n.children, child)
	child.MarkDirty()
}

// RemoveChild returns false when child is not a direct child of n
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			child.parent = nil
			child.MarkDirty()
			return true
		}
	}
	return false
}

func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *Node) ChildByName(name string) *Node {
	name = norm.NFC.String(name)
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order.
// Returning false from fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) Find(name string) (found *Node) {
	name = norm.NFC.String(name)
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

func (n *Node) FindByID(id uuid.UUID) (found *Node) {
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.id == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// IsAncestorOf reports whether n is other or one of its parents
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Path returns the names from the root down to n
func (n *Node) Path() []string {
	var depth int
	for p := n; p != nil; p = p.parent {
		depth++
	}
	path := make([]string, depth)
	for p := n; p != nil; p = p.parent {
		depth--
		path[depth] = p.name
	}
	return path
}

func (n *Node) Transform() Transform { return n.transform }

func (n *Node) SetTransform(t Transform) {
	n.transform = t
	n.MarkDirty()
}

func (n *Node) SetPosition(v mgl64.Vec3) {
	n.transform.Position = v
	n.MarkDirty()
}

func (n *Node) SetRotation(e Euler) {
	n.transform.Rotation = e
	n.MarkDirty()
}

func (n *Node) SetScale(v mgl64.Vec3) {
	n.transform.Scale = v
	n.MarkDirty()
}

func (n *Node) IsDirty() bool { return n.state == Dirty }

func (n *Node) MarkDirty() { n.state = Dirty }

func (n *Node) MarkClean() { n.state = Clean }

func (n *Node) LocalMatrix() mgl64.Mat4 { return n.localMatrix }

func (n *Node) WorldMatrix() mgl64.Mat4 { return n.worldMatrix }

func (n *Node) ComputeLocalMatrix() {
	n.localMatrix = n.transform.Matrix()
}

// ComputeWorldMatrix recomputes the local and world matrices.
// With updateParent the parent chain is refreshed first (without
// touching siblings), with updateChildren the whole subtree is
// refreshed afterwards (without touching parents again).
func (n *Node) ComputeWorldMatrix(updateParent, updateChildren bool) {
	if updateParent && n.parent != nil {
		n.parent.ComputeWorldMatrix(true, false)
	}

	n.ComputeLocalMatrix()
	if n.parent != nil {
		n.worldMatrix = n.parent.worldMatrix.Mul4(n.localMatrix)
	} else {
		n.worldMatrix = n.localMatrix
	}
	n.onWorldMatrixChange()

	if updateChildren {
		for _, c := range n.children {
			c.ComputeWorldMatrix(false, true)
		}
	}
}

func (n *Node) onWorldMatrixChange() {
	if n.Camera != nil {
		n.Camera.OnWorldMatrixChange(n.worldMatrix)
	}
}

// WorldPosition forces a fresh world matrix for n and its parents
func (n *Node) WorldPosition() mgl64.Vec3 {
	n.ComputeWorldMatrix(true, false)
	return n.worldMatrix.Col(3).Vec3()
}
