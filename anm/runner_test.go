package anm

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/scene_editor/r3d"
)

func v3(x, y, z float64) *[3]float64 {
	return &[3]float64{x, y, z}
}

func boxScene() (root, box, empty *r3d.Node) {
	root = r3d.NewNode("Root")
	box = r3d.NewNode("Box")
	empty = r3d.NewNode("Empty")
	root.AddChild(box)
	root.AddChild(empty)
	return
}

func framePath(child string, k *TRS) *Path {
	p := NewPath()
	p.Children[child] = &Path{Keyframe: k}
	return p
}

func TestWrapFrame(t *testing.T) {
	for _, tc := range []struct {
		frame, length, expected int
	}{
		{-1, 4, 3},
		{5, 4, 1},
		{4, 4, 0},
		{-9, 4, 3},
		{2, 4, 2},
		{3, 0, 0},
	} {
		assert.Equal(t, tc.expected, WrapFrame(tc.frame, tc.length), "%d mod %d", tc.frame, tc.length)
	}

	r := NewRunner(r3d.NewNode("n"), NewClip("c", 4), 24, TweenLinear)
	r.SetCurrentFrame(-1)
	assert.Equal(t, 3, r.CurrentFrame())
	r.SetCurrentFrame(5)
	assert.Equal(t, 1, r.CurrentFrame())
}

func TestTweenHalfway(t *testing.T) {
	root, box, empty := boxScene()
	clip := &Clip{Name: "move", Frames: []*Path{
		framePath("Box", &TRS{Translation: v3(0, 0, 0)}),
		framePath("Box", &TRS{Translation: v3(10, 0, 0)}),
	}}
	r := NewRunner(root, clip, 2, TweenLinear)
	r.IsPlaying = true

	r.Update(0.25)

	assert.Equal(t, 0.5, r.DeltaFrame())
	assert.Equal(t, 0, r.CurrentFrame())
	assert.Equal(t, 5.0, box.Transform().Position.X())
	assert.True(t, box.IsDirty())
	assert.Equal(t, mgl64.Vec3{}, empty.Transform().Position)
}

func TestTweenSingleChannel(t *testing.T) {
	root, box, _ := boxScene()
	box.SetScale(mgl64.Vec3{2, 2, 2})
	clip := &Clip{Frames: []*Path{
		framePath("Box", &TRS{Translation: v3(1, 2, 3)}),
		framePath("Box", &TRS{Rotation: v3(0, 1, 0)}),
	}}
	r := NewRunner(root, clip, 24, TweenLinear)

	r.ApplyTween(0.5)

	tr := box.Transform()
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, tr.Position)
	assert.Equal(t, r3d.Euler{Y: 1}, tr.Rotation)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, tr.Scale)
}

func TestTweenOneSidedPath(t *testing.T) {
	root, box, empty := boxScene()
	clip := &Clip{Frames: []*Path{
		framePath("Box", &TRS{Translation: v3(4, 0, 0)}),
		framePath("Empty", &TRS{Scale: v3(3, 3, 3)}),
	}}
	r := NewRunner(root, clip, 24, TweenQuad)
	r.ApplyTween(0.5)

	assert.Equal(t, mgl64.Vec3{4, 0, 0}, box.Transform().Position)
	assert.Equal(t, mgl64.Vec3{3, 3, 3}, empty.Transform().Scale)
}

func TestUpdateWithoutTween(t *testing.T) {
	root, box, _ := boxScene()
	clip := &Clip{Frames: []*Path{
		framePath("Box", &TRS{Translation: v3(0, 0, 0)}),
		framePath("Box", &TRS{Translation: v3(1, 0, 0)}),
		framePath("Box", &TRS{Translation: v3(2, 0, 0)}),
	}}
	r := NewRunner(root, clip, 1, TweenNone)

	r.Update(1)
	assert.Equal(t, 0, r.CurrentFrame(), "stopped runner must not advance")

	r.IsPlaying = true
	r.Update(2.5)
	assert.Equal(t, 2, r.CurrentFrame())
	assert.Equal(t, 0.5, r.DeltaFrame())
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, box.Transform().Position)

	// sub-frame progress alone does nothing without tweening
	box.SetPosition(mgl64.Vec3{})
	r.Update(0.25)
	assert.Equal(t, mgl64.Vec3{}, box.Transform().Position)
}

func TestUpdateReverseWrapsAndNotifies(t *testing.T) {
	r := NewRunner(r3d.NewNode("n"), NewClip("c", 4), 1, TweenLinear)
	r.IsPlaying = true
	r.Reverse = true

	var frames []int
	r.OnFrameChange = func(_ *Runner, frame int) {
		frames = append(frames, frame)
	}

	r.Update(1)
	r.Update(1)
	assert.Equal(t, []int{3, 2}, frames)
}

func TestAddFrame(t *testing.T) {
	clip := &Clip{Frames: []*Path{
		framePath("a", &TRS{Translation: v3(0, 0, 0)}),
		framePath("a", &TRS{Translation: v3(1, 0, 0)}),
		framePath("a", &TRS{Translation: v3(2, 0, 0)}),
	}}
	before := append([]*Path(nil), clip.Frames...)
	r := NewRunner(r3d.NewNode("n"), clip, 24, TweenLinear)

	assert.Equal(t, 3, r.AddFrame())
	require.Equal(t, 4, r.Len())
	assert.Equal(t, NewPath(), clip.Frames[3])

	idx, err := r.AddFrameAfter(1)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	require.Equal(t, 5, r.Len())
	assert.Same(t, before[0], clip.Frames[0])
	assert.Same(t, before[1], clip.Frames[1])
	assert.Equal(t, NewPath(), clip.Frames[2])
	assert.Same(t, before[2], clip.Frames[3])

	_, err = r.AddFrameAfter(7)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
}

func TestDeleteAndSwitchFrame(t *testing.T) {
	clip := NewClip("c", 3)
	first, second, third := clip.Frames[0], clip.Frames[1], clip.Frames[2]
	r := NewRunner(r3d.NewNode("n"), clip, 24, TweenLinear)

	require.NoError(t, r.SwitchFrame(0, 2))
	assert.Equal(t, []*Path{third, second, first}, clip.Frames)
	assert.ErrorIs(t, r.SwitchFrame(0, 3), ErrFrameOutOfRange)

	r.SetCurrentFrame(2)
	require.NoError(t, r.DeleteFrame(1))
	assert.Equal(t, []*Path{third, first}, clip.Frames)
	assert.Equal(t, 0, r.CurrentFrame())

	assert.ErrorIs(t, r.DeleteFrame(-1), ErrFrameOutOfRange)
}

func TestDuplicateFrame(t *testing.T) {
	clip := &Clip{Frames: []*Path{
		framePath("Box", &TRS{Translation: v3(1, 2, 3)}),
		NewPath(),
	}}
	r := NewRunner(r3d.NewNode("n"), clip, 24, TweenLinear)

	idx, err := r.DuplicateFrame(0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	require.Equal(t, 3, r.Len())

	original, err := json.Marshal(clip.Frames[0])
	require.NoError(t, err)
	copied, err := json.Marshal(clip.Frames[1])
	require.NoError(t, err)
	assert.JSONEq(t, string(original), string(copied))
	assert.NotSame(t, clip.Frames[0], clip.Frames[1])

	clip.Frames[1].Children["Other"] = NewPath()
	assert.NotContains(t, clip.Frames[0].Children, "Other")
}

func TestKeyframeEdit(t *testing.T) {
	root := r3d.NewNode("Root")
	group := r3d.NewNode("Group")
	leaf := r3d.NewNode("Leaf")
	root.AddChild(group)
	group.AddChild(leaf)
	outside := r3d.NewNode("Outside")

	r := NewRunner(root, NewClip("c", 2), 24, TweenLinear)
	r.SetCurrentFrame(1)

	k, err := r.AddKeyframe(leaf)
	require.NoError(t, err)
	assert.True(t, k.IsEmpty())

	frame := r.Clip.Frames[1]
	require.Contains(t, frame.Children, "Group")
	require.Contains(t, frame.Children["Group"].Children, "Leaf")
	assert.Same(t, k, frame.Children["Group"].Children["Leaf"].Keyframe)
	assert.Empty(t, r.Clip.Frames[0].Children)

	again, err := r.AddKeyframe(leaf)
	require.NoError(t, err)
	assert.Same(t, k, again)
	assert.Same(t, k, r.Keyframe(leaf))
	assert.Nil(t, r.Keyframe(group))

	leaf.SetPosition(mgl64.Vec3{7, 8, 9})
	k.Capture(leaf.Transform())
	assert.Equal(t, v3(7, 8, 9), k.Translation)
	assert.Equal(t, v3(1, 1, 1), k.Scale)

	removed, err := r.RemoveKeyframe(leaf)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NotContains(t, frame.Children["Group"].Children, "Leaf")

	removed, err = r.RemoveKeyframe(leaf)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = r.AddKeyframe(outside)
	assert.ErrorIs(t, err, ErrNotInTarget)

	// the target itself keys at the root of the path
	rootKey, err := r.AddKeyframe(root)
	require.NoError(t, err)
	assert.Same(t, rootKey, frame.Keyframe)
}

func TestAddKeyframeReplacesNullEntry(t *testing.T) {
	root, box, _ := boxScene()
	var clip Clip
	require.NoError(t, json.Unmarshal([]byte(`{"name": "c", "frames": [{}, {"children": {"Box": null}}]}`), &clip))
	require.Contains(t, clip.Frames[1].Children, "Box")

	r := NewRunner(root, &clip, 24, TweenLinear)
	r.SetCurrentFrame(1)
	assert.Nil(t, r.Keyframe(box))
	removed, err := r.RemoveKeyframe(box)
	require.NoError(t, err)
	assert.False(t, removed)

	k, err := r.AddKeyframe(box)
	require.NoError(t, err)
	require.NotNil(t, clip.Frames[1].Children["Box"])
	assert.Same(t, k, clip.Frames[1].Children["Box"].Keyframe)
}

func TestKeyframeChannelsDecode(t *testing.T) {
	var k TRS
	require.NoError(t, json.Unmarshal([]byte(`{"translation": [1, 2, 3], "scale": null}`), &k))
	assert.Equal(t, v3(1, 2, 3), k.Translation)
	assert.Nil(t, k.Rotation)
	assert.Nil(t, k.Scale)

	for _, doc := range []string{
		`{"translation": [7, 8]}`,
		`{"rotation": [1, 2, 3, 4]}`,
		`{"scale": "big"}`,
		`{"position": [1, 2, 3]}`,
	} {
		var k TRS
		assert.Error(t, json.Unmarshal([]byte(doc), &k), doc)
	}
}

func TestApplyFrameSkipsUnmatchedNames(t *testing.T) {
	root, box, _ := boxScene()
	p := NewPath()
	p.Children["Box"] = &Path{Keyframe: &TRS{Translation: v3(1, 0, 0)}}
	p.Children["Renamed"] = &Path{Keyframe: &TRS{Translation: v3(9, 9, 9)}}
	p.Apply(root)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, box.Transform().Position)
}

func TestTweenFunctions(t *testing.T) {
	for _, name := range Tweens() {
		fn := name.Func()
		if name == TweenNone {
			assert.Nil(t, fn)
			continue
		}
		require.NotNil(t, fn, string(name))
		assert.InDelta(t, 0, fn(0), 1e-9, string(name))
		assert.InDelta(t, 1, fn(1), 1e-9, string(name))
		mid := fn(0.5)
		assert.True(t, mid >= 0 && mid <= 1, "%s(0.5) = %v", name, mid)
	}
	assert.Equal(t, 0.25, TweenQuad.Func()(0.5))

	_, err := ParseTween("wobble")
	assert.Error(t, err)
	tw, err := ParseTween("none")
	require.NoError(t, err)
	assert.False(t, tw.Enabled())
}
