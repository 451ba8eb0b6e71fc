package anm

import (
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/r3d"
)

// chain returns node names from below the target down to n
func (r *Runner) chain(n *r3d.Node) ([]string, error) {
	if r.Target == nil || n == nil || !r.Target.IsAncestorOf(n) {
		return nil, ErrNotInTarget
	}
	var names []string
	for p := n; p != r.Target; p = p.Parent() {
		names = append(names, p.Name())
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, nil
}

// AddKeyframe makes sure node n has a keyframe in the current frame,
// creating the intermediate path entries on the way. An existing
// keyframe is returned untouched.
func (r *Runner) AddKeyframe(n *r3d.Node) (*TRS, error) {
	names, err := r.chain(n)
	if err != nil {
		return nil, err
	}
	p := r.CurrentPath()
	if p == nil {
		return nil, errors.Wrap(ErrFrameOutOfRange, "clip has no frames")
	}
	for _, name := range names {
		p = p.child(name, true)
	}
	if p.Keyframe == nil {
		p.Keyframe = &TRS{}
	}
	return p.Keyframe, nil
}

// RemoveKeyframe drops the keyframe of node n from the current frame.
// The path entry itself is removed unless it still leads to keyframes
// of descendants. Returns false if there was nothing to remove.
func (r *Runner) RemoveKeyframe(n *r3d.Node) (bool, error) {
	names, err := r.chain(n)
	if err != nil {
		return false, err
	}
	root := r.CurrentPath()
	if root == nil {
		return false, nil
	}

	var parent *Path
	p := root
	for _, name := range names {
		parent = p
		if p = p.child(name, false); p == nil {
			return false, nil
		}
	}
	if p.Keyframe == nil {
		return false, nil
	}
	p.Keyframe = nil
	if parent != nil && len(p.Children) == 0 {
		delete(parent.Children, names[len(names)-1])
	}
	return true, nil
}

// Keyframe returns the keyframe of node n in the current frame, if any
func (r *Runner) Keyframe(n *r3d.Node) *TRS {
	names, err := r.chain(n)
	if err != nil {
		return nil
	}
	p := r.CurrentPath()
	for _, name := range names {
		if p == nil {
			return nil
		}
		p = p.child(name, false)
	}
	if p == nil {
		return nil
	}
	return p.Keyframe
}
