package editor

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/scene_editor/assets"
	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/scenefile"
	"github.com/mogaika/scene_editor/vfs"
)

func startEditor(t *testing.T, opts Options) (*Editor, context.Context) {
	opts.ManualTick = true
	e := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e, ctx
}

func rootID(t *testing.T, e *Editor, ctx context.Context) uuid.UUID {
	tree, err := e.Tree(ctx)
	require.NoError(t, err)
	return uuid.MustParse(tree.ID)
}

func sceneBytes(t *testing.T, names ...string) []byte {
	scene := NewDefaultScene()
	for _, name := range names {
		scene.AddChild(r3d.NewNode(name))
	}
	var buf bytes.Buffer
	require.NoError(t, scenefile.Save(&buf, scene, nil))
	return buf.Bytes()
}

func TestDoWaitsForRunningCommand(t *testing.T) {
	e, ctx := startEditor(t, Options{})
	cmdCtx, cancel := context.WithCancel(ctx)
	started := make(chan struct{})
	release := make(chan struct{})
	returned := make(chan error, 1)
	value := 0
	go func() {
		returned <- e.Do(cmdCtx, func(s *State) error {
			close(started)
			<-release
			value = 42
			return nil
		})
	}()

	<-started
	cancel()
	select {
	case <-returned:
		t.Fatal("Do returned while its command was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-returned)
	assert.Equal(t, 42, value)

	assert.ErrorIs(t, e.Do(cmdCtx, func(s *State) error { return nil }), context.Canceled)
}

func TestDeleteNodeClearsFocusAndRunners(t *testing.T) {
	e, ctx := startEditor(t, Options{})
	root := rootID(t, e, ctx)

	box, err := e.AddNode(ctx, root, "box", "cube")
	require.NoError(t, err)
	lid, err := e.AddNode(ctx, box, "", "plane")
	require.NoError(t, err)
	other, err := e.AddNode(ctx, root, "other", "")
	require.NoError(t, err)

	_, err = e.AddAnimation(ctx, box, "open")
	require.NoError(t, err)
	_, err = e.AddAnimation(ctx, other, "")
	require.NoError(t, err)

	require.NoError(t, e.Focus(ctx, lid))
	require.NoError(t, e.DeleteNode(ctx, box))

	_, focused, err := e.Focused(ctx)
	require.NoError(t, err)
	assert.False(t, focused)

	anims, err := e.Animations(ctx)
	require.NoError(t, err)
	require.Len(t, anims, 1)
	assert.Equal(t, other.String(), anims[0].Target)
	assert.NotEmpty(t, anims[0].Name)

	tree, err := e.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "camera", tree.Children[0].Name)
	assert.Equal(t, "other", tree.Children[1].Name)

	err = e.Focus(ctx, lid)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestNodeHookErrors(t *testing.T) {
	e, ctx := startEditor(t, Options{})
	tree, err := e.Tree(ctx)
	require.NoError(t, err)
	root := uuid.MustParse(tree.ID)
	camera := uuid.MustParse(tree.Children[0].ID)

	assert.Error(t, e.DeleteNode(ctx, root))
	assert.Error(t, e.DeleteNode(ctx, camera))
	assert.True(t, errors.Is(e.DeleteNode(ctx, uuid.New()), ErrNodeNotFound))

	a, err := e.AddNode(ctx, root, "a", "")
	require.NoError(t, err)
	b, err := e.AddNode(ctx, a, "b", "")
	require.NoError(t, err)
	assert.Error(t, e.Reparent(ctx, a, b))
	assert.Error(t, e.Reparent(ctx, a, a))
	assert.Error(t, e.Reparent(ctx, root, a))

	_, err = e.AddNode(ctx, root, "c", "dodecahedron")
	assert.Error(t, err)

	// sibling names stay unique
	dup, err := e.AddNode(ctx, root, "a", "")
	require.NoError(t, err)
	assert.Error(t, e.Rename(ctx, dup, "a"))
	require.NoError(t, e.Reparent(ctx, b, root))
	tree, err = e.Tree(ctx)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, c := range tree.Children {
		assert.False(t, seen[c.Name], c.Name)
		seen[c.Name] = true
	}
	assert.True(t, seen["a"])
	assert.True(t, seen["b"])
}

func TestKeyframesPlayback(t *testing.T) {
	type event struct{ anim, frame int }
	var events []event
	e, ctx := startEditor(t, Options{
		OnFrameChange: func(anim, frame int) { events = append(events, event{anim, frame}) },
	})
	root := rootID(t, e, ctx)

	box, err := e.AddNode(ctx, root, "box", "cube")
	require.NoError(t, err)
	anim, err := e.AddAnimation(ctx, root, "slide")
	require.NoError(t, err)
	require.NoError(t, e.SetFPS(ctx, anim, 2))

	require.NoError(t, e.Focus(ctx, box))
	require.NoError(t, e.AddKeyframe(ctx, anim))

	frame, err := e.AddFrame(ctx, anim, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, frame)
	require.NoError(t, e.SetFrame(ctx, anim, 1))

	moved := r3d.NewTransform()
	moved.Position = mgl64.Vec3{10, 0, 0}
	require.NoError(t, e.SetTransform(ctx, box, moved))
	require.NoError(t, e.AddKeyframe(ctx, anim))

	boxX := func() float64 {
		fs, err := e.Frame(ctx)
		require.NoError(t, err)
		for _, item := range fs.Items {
			if item.Name == "box" {
				return item.World[12]
			}
		}
		t.Fatal("box is not drawn")
		return 0
	}

	require.NoError(t, e.SetFrame(ctx, anim, 0))
	require.NoError(t, e.Tick(ctx, 0))
	assert.InDelta(t, 0, boxX(), 1e-9)

	require.NoError(t, e.Play(ctx, anim, true))
	require.NoError(t, e.Tick(ctx, 0.25))
	assert.InDelta(t, 5, boxX(), 1e-9)

	require.NoError(t, e.Tick(ctx, 0.5))
	assert.InDelta(t, 5, boxX(), 1e-9)
	assert.Equal(t, []event{{0, 1}, {0, 0}, {0, 1}}, events)

	require.NoError(t, e.Play(ctx, anim, false))
	require.NoError(t, e.Tick(ctx, 0))
	assert.InDelta(t, 10, boxX(), 1e-9)

	clip, err := e.Animation(ctx, anim)
	require.NoError(t, err)
	require.Len(t, clip.Frames, 2)
	assert.Equal(t, [3]float64{10, 0, 0}, *clip.Frames[1].Children["box"].Keyframe.Translation)

	require.NoError(t, e.RemoveKeyframe(ctx, anim))
	assert.Error(t, e.RemoveKeyframe(ctx, anim))
	// the copy is detached from the runner
	assert.NotNil(t, clip.Frames[1].Children["box"])

	dup, err := e.DuplicateFrame(ctx, anim, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, dup)
	require.NoError(t, e.SwitchFrame(ctx, anim, 0, 2))
	require.NoError(t, e.DeleteFrame(ctx, anim, 2))
	require.NoError(t, e.DeleteFrame(ctx, anim, 1))
	assert.Error(t, e.DeleteFrame(ctx, anim, 0))
	assert.Error(t, e.SetFrame(ctx, 5, 0))

	require.NoError(t, e.RemoveAnimation(ctx, anim))
	anims, err := e.Animations(ctx)
	require.NoError(t, err)
	assert.Empty(t, anims)
}

func TestSaveOpen(t *testing.T) {
	dir := vfs.NewDirectoryDriver(t.TempDir())
	e, ctx := startEditor(t, Options{Dir: dir})
	root := rootID(t, e, ctx)

	_, err := e.AddNode(ctx, root, "box", "cube")
	require.NoError(t, err)
	assert.Error(t, e.Save(ctx, ""))
	require.NoError(t, e.Save(ctx, "scenes/first.json"))

	require.NoError(t, e.Load(ctx, sceneBytes(t, "empty")))
	tree, err := e.Tree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "empty", tree.Children[1].Name)

	files, err := e.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"scenes/first.json"}, files)

	require.NoError(t, e.Open(ctx, "scenes/first.json"))
	tree, err = e.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "box", tree.Children[1].Name)
	assert.Equal(t, "cube", tree.Children[1].Mesh)

	assert.Error(t, e.Open(ctx, "scenes/missing.json"))
	assert.Error(t, e.Load(ctx, []byte(`{"scene": 0}`)))

	var glb bytes.Buffer
	require.NoError(t, e.ExportGLTF(ctx, &glb))
	assert.True(t, bytes.HasPrefix(glb.Bytes(), []byte("glTF")))

	dump, err := e.DumpScene(ctx)
	require.NoError(t, err)
	assert.Contains(t, dump, "box")
}

func TestStaleImagesDropped(t *testing.T) {
	e := New(Options{ManualTick: true})
	img := &r3d.Image{URI: "a.png"}
	pixels := image.NewRGBA(image.Rect(0, 0, 1, 1))

	e.applyImage(imageResult{generation: e.state.generation - 1, image: img, result: assets.Result{Image: pixels}})
	assert.Nil(t, img.Data)

	e.applyImage(imageResult{generation: e.state.generation, image: img, result: assets.Result{Err: errors.New("broken")}})
	assert.Nil(t, img.Data)

	e.applyImage(imageResult{generation: e.state.generation, image: img, result: assets.Result{Image: pixels}})
	assert.Equal(t, image.Image(pixels), img.Data)
}

func TestImageErrorReported(t *testing.T) {
	type failure struct {
		uri string
		err error
	}
	failures := make(chan failure, 1)
	e, ctx := startEditor(t, Options{
		OnImageError: func(uri string, err error) { failures <- failure{uri, err} },
	})

	broken := &r3d.Image{URI: "data:image/png;base64,!!!"}
	scene := NewDefaultScene()
	scene.AddTexture(r3d.NewTexture(broken))
	var buf bytes.Buffer
	require.NoError(t, scenefile.Save(&buf, scene, nil))
	require.NoError(t, e.Load(ctx, buf.Bytes()))

	select {
	case f := <-failures:
		assert.Equal(t, broken.URI, f.uri)
		assert.Error(t, f.err)
	case <-time.After(5 * time.Second):
		t.Fatal("image failure was not reported")
	}

	require.NoError(t, e.Do(ctx, func(s *State) error {
		images := s.Scene.Images()
		require.Len(t, images, 1)
		assert.Nil(t, images[0].Data)
		return nil
	}))

	// stale failures stay silent
	require.NoError(t, e.Do(ctx, func(s *State) error {
		e.applyImage(imageResult{generation: s.generation - 1, image: broken, result: assets.Result{Err: errors.New("late")}})
		return nil
	}))
	assert.Empty(t, failures)
}

func TestWatchReloads(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "scene.json"), sceneBytes(t, "before"), 0666))

	reloaded := make(chan string, 4)
	e, ctx := startEditor(t, Options{
		Dir:      vfs.NewDirectoryDriver(root),
		Watch:    true,
		OnReload: func(file string) { reloaded <- file },
	})
	require.NoError(t, e.Open(ctx, "scene.json"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "scene.json"), sceneBytes(t, "after"), 0666))
	select {
	case file := <-reloaded:
		assert.Equal(t, "scene.json", file)
	case <-time.After(5 * time.Second):
		t.Fatal("scene was not reloaded")
	}

	tree, err := e.Tree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "after", tree.Children[1].Name)
}
