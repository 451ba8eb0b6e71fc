// Package editor owns an editing session: the scene, its animation
// runners and the focused node. Everything is mutated on a single loop
// goroutine; hooks submit commands to it and wait for the result.
package editor

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/anm"
	"github.com/mogaika/scene_editor/assets"
	"github.com/mogaika/scene_editor/r3d"
	"github.com/mogaika/scene_editor/scenefile"
	"github.com/mogaika/scene_editor/utils"
	"github.com/mogaika/scene_editor/vfs"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrStopped      = errors.New("editor is not running")
)

type Options struct {
	Dir          vfs.Directory
	TickRate     int
	DefaultFPS   float64
	DefaultTween anm.Tween
	Watch        bool
	GLTFCacheDir string

	// ManualTick disables the ticker, frames are produced by Tick only
	ManualTick bool

	// OnFrameChange is called on the loop goroutine with the animation
	// index and its new current frame
	OnFrameChange func(anim, frame int)
	// OnReload is called after the open document was reloaded from disk
	OnReload func(file string)
	// OnImageError is called when an image of the current scene failed
	// to load; its pixels stay unset
	OnImageError func(uri string, err error)
}

// State is only touched by the loop goroutine
type State struct {
	Scene   *r3d.Scene
	Runners []*anm.Runner
	Focused *r3d.Node
	File    string

	// raw document of the last open or save, used to skip
	// reloading our own writes in watch mode
	fileData   []byte
	generation int
	drawList   r3d.DrawList
}

type command struct {
	fn   func(s *State) error
	done chan error
}

type imageResult struct {
	generation int
	image      *r3d.Image
	result     assets.Result
}

type Editor struct {
	opts   Options
	loader *assets.Loader
	names  *utils.RandomNameGenerator

	cmds    chan command
	images  chan imageResult
	stopped chan struct{}
	ctx     context.Context

	watcher     *fsnotify.Watcher
	watchedPath string

	state *State
}

func New(opts Options) *Editor {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.DefaultFPS <= 0 {
		opts.DefaultFPS = 24
	}
	if opts.DefaultTween == "" {
		opts.DefaultTween = anm.TweenLinear
	}
	e := &Editor{
		opts:    opts,
		loader:  assets.NewLoader(opts.Dir),
		names:   utils.NewRandomNameGenerator(time.Now().UnixNano()),
		cmds:    make(chan command),
		images:  make(chan imageResult, 16),
		stopped: make(chan struct{}),
		ctx:     context.Background(),
	}
	e.state = &State{}
	e.install(e.state, &scenefile.Loaded{Scene: NewDefaultScene()})
	return e
}

// NewDefaultScene is an empty scene looked at by a perspective camera
func NewDefaultScene() *r3d.Scene {
	scene := r3d.NewScene("scene")
	cam := r3d.NewNode("camera")
	cam.Camera = r3d.NewPerspectiveCamera(mgl64.DegToRad(50), 16.0/9.0, 0.1, 1000)
	cam.SetPosition(mgl64.Vec3{0, 0, 10})
	scene.AddChild(cam)
	scene.ActiveCamera = cam
	return scene
}

// Run executes commands and render ticks until ctx is done
func (e *Editor) Run(ctx context.Context) error {
	defer close(e.stopped)
	e.ctx = ctx

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if e.opts.Watch {
		if _, ok := e.opts.Dir.(vfs.Locator); ok {
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return errors.Wrap(err, "create watcher")
			}
			defer w.Close()
			e.watcher = w
			watchEvents, watchErrors = w.Events, w.Errors
			if e.state.File != "" {
				e.watch(e.state.File)
			}
		} else {
			log.Printf("[editor] watch mode needs a filesystem project directory")
		}
	}

	var ticks <-chan time.Time
	if !e.opts.ManualTick {
		ticker := time.NewTicker(time.Second / time.Duration(e.opts.TickRate))
		defer ticker.Stop()
		ticks = ticker.C
		log.Printf("[editor] loop started at %d ticks per second", e.opts.TickRate)
	}
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-e.cmds:
			cmd.done <- cmd.fn(e.state)
		case res := <-e.images:
			e.applyImage(res)
		case now := <-ticks:
			e.state.tick(now.Sub(last).Seconds())
			last = now
		case ev := <-watchEvents:
			e.onWatchEvent(ev)
		case err := <-watchErrors:
			log.Printf("[editor] watch error: %v", err)
		}
	}
}

// Do runs fn on the loop goroutine and returns its error. ctx only
// bounds the wait for the loop to pick fn up.
func (e *Editor) Do(ctx context.Context, fn func(s *State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case e.cmds <- cmd:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// fn may write into the caller's variables until done
	return <-cmd.done
}

func (s *State) tick(dt float64) {
	for _, r := range s.Runners {
		r.Update(dt)
	}
	r3d.Tick(s.Scene.Node)
	r3d.Render(s.Scene, &s.drawList)
}

// Tick advances playback by dt seconds and renders a frame right away
func (e *Editor) Tick(ctx context.Context, dt float64) error {
	return e.Do(ctx, func(s *State) error {
		s.tick(dt)
		return nil
	})
}

// install swaps in a new scene. Image loads of the previous scene are
// dropped on arrival by comparing generations.
func (e *Editor) install(s *State, loaded *scenefile.Loaded) {
	s.generation++
	s.Scene = loaded.Scene
	s.Runners = loaded.Runners
	s.Focused = nil
	for _, r := range s.Runners {
		e.bindRunner(r)
		r.ApplyFrame()
	}
	s.Scene.Walk(func(n *r3d.Node) bool {
		n.MarkDirty()
		if n.Camera != nil {
			n.Camera.CameraDirty()
		}
		return true
	})
	s.tick(0)

	for _, img := range s.Scene.Images() {
		if img.Data != nil {
			continue
		}
		go func(gen int, img *r3d.Image, ch <-chan assets.Result) {
			res := <-ch
			select {
			case e.images <- imageResult{generation: gen, image: img, result: res}:
			case <-e.stopped:
			}
		}(s.generation, img, e.loader.Load(e.ctx, img.URI))
	}
}

func (e *Editor) applyImage(res imageResult) {
	if res.generation != e.state.generation {
		log.Printf("[editor] dropping stale image %q", res.image.URI)
		return
	}
	if res.result.Err != nil {
		if e.opts.OnImageError != nil {
			e.opts.OnImageError(res.image.URI, res.result.Err)
		}
		return
	}
	res.image.Data = res.result.Image
}

func (e *Editor) bindRunner(r *anm.Runner) {
	r.OnFrameChange = func(r *anm.Runner, frame int) {
		if e.opts.OnFrameChange == nil {
			return
		}
		for i, rr := range e.state.Runners {
			if rr == r {
				e.opts.OnFrameChange(i, frame)
				return
			}
		}
	}
}

func (e *Editor) load(s *State, data []byte) error {
	loaded, err := scenefile.Load(bytes.NewReader(data))
	if err != nil {
		return err
	}
	e.install(s, loaded)
	return nil
}

func (e *Editor) watch(file string) {
	if e.watcher == nil {
		return
	}
	locator := e.opts.Dir.(vfs.Locator)
	path, err := locator.Locate(file)
	if err != nil {
		log.Printf("[editor] watch %q: %v", file, err)
		return
	}
	if e.watchedPath != "" {
		e.watcher.Remove(filepath.Dir(e.watchedPath))
	}
	// editors often replace files by rename, so watch the directory
	if err := e.watcher.Add(filepath.Dir(path)); err != nil {
		log.Printf("[editor] watch %q: %v", file, err)
		return
	}
	e.watchedPath = path
}

func (e *Editor) onWatchEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != e.watchedPath || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	s := e.state
	data, err := vfs.ReadFile(e.opts.Dir, s.File)
	if err != nil {
		log.Printf("[editor] reload %q: %v", s.File, err)
		return
	}
	if bytes.Equal(data, s.fileData) {
		return
	}
	if err := e.load(s, data); err != nil {
		log.Printf("[editor] reload %q: %v", s.File, err)
		return
	}
	s.fileData = data
	log.Printf("[editor] reloaded %q", s.File)
	if e.opts.OnReload != nil {
		e.opts.OnReload(s.File)
	}
}
