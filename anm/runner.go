package anm

import (
	"math"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/r3d"
)

var (
	ErrFrameOutOfRange = errors.New("frame index out of range")
	ErrNotInTarget     = errors.New("node is not inside the animation target")
)

/*
Runner plays a Clip on a target subtree. The target is not owned:
the runner only mutates transforms through the node API and marks
nodes dirty, the tick loop does the rest.
Frame numbers always wrap modulo the clip length.
*/
type Runner struct {
	Target    *r3d.Node
	Clip      *Clip
	FPS       float64
	Tween     Tween
	IsPlaying bool
	Reverse   bool

	// OnFrameChange is called after every change of the current frame
	OnFrameChange func(r *Runner, frame int)

	currentFrame int
	deltaFrame   float64
}

func NewRunner(target *r3d.Node, clip *Clip, fps float64, tween Tween) *Runner {
	if clip == nil {
		clip = NewClip("", 1)
	}
	return &Runner{
		Target: target,
		Clip:   clip,
		FPS:    fps,
		Tween:  tween,
	}
}

func (r *Runner) Len() int {
	return len(r.Clip.Frames)
}

func (r *Runner) CurrentFrame() int { return r.currentFrame }

func (r *Runner) DeltaFrame() float64 { return r.deltaFrame }

func (r *Runner) Frame(i int) (*Path, error) {
	if i < 0 || i >= r.Len() {
		return nil, errors.Wrapf(ErrFrameOutOfRange, "frame %d of %d", i, r.Len())
	}
	return r.Clip.Frames[i], nil
}

func (r *Runner) CurrentPath() *Path {
	if r.Len() == 0 {
		return nil
	}
	return r.Clip.Frames[r.currentFrame]
}

func (r *Runner) setFrame(frame int) {
	frame = WrapFrame(frame, r.Len())
	changed := frame != r.currentFrame
	r.currentFrame = frame
	if changed && r.OnFrameChange != nil {
		r.OnFrameChange(r, frame)
	}
}

// SetCurrentFrame wraps frame, drops the sub-frame progress and snaps
// the target to the new frame
func (r *Runner) SetCurrentFrame(frame int) {
	r.deltaFrame = 0
	r.setFrame(frame)
	r.ApplyFrame()
}

// ApplyFrame snaps the target to the current frame keyframes
func (r *Runner) ApplyFrame() {
	if p := r.CurrentPath(); p != nil && r.Target != nil {
		p.Apply(r.Target)
	}
}

func (r *Runner) nextFrame() int {
	if r.Reverse {
		return WrapFrame(r.currentFrame-1, r.Len())
	}
	return WrapFrame(r.currentFrame+1, r.Len())
}

// ApplyTween blends the current frame with the next one in the playback
// direction at sub-frame position t
func (r *Runner) ApplyTween(t float64) {
	if r.Len() == 0 || r.Target == nil {
		return
	}
	f := t
	if fn := r.Tween.Func(); fn != nil {
		f = fn(t)
	}
	blendPaths(r.Clip.Frames[r.currentFrame], r.Clip.Frames[r.nextFrame()], f, r.Target)
}

// Update advances playback by dt seconds
func (r *Runner) Update(dt float64) {
	if !r.IsPlaying || r.Len() == 0 || r.Target == nil {
		return
	}

	r.deltaFrame += dt * r.FPS
	frameChanged := false
	if r.deltaFrame >= 1 {
		step := math.Floor(r.deltaFrame)
		r.deltaFrame -= step
		if r.Reverse {
			step = -step
		}
		r.setFrame(r.currentFrame + int(step))
		frameChanged = true

		if !r.Tween.Enabled() {
			r.ApplyFrame()
			return
		}
	}

	if r.Tween.Enabled() && (r.deltaFrame != 0 || frameChanged) {
		r.ApplyTween(r.deltaFrame)
	}
}

// AddFrame appends an empty frame and returns its index
func (r *Runner) AddFrame() int {
	r.Clip.Frames = append(r.Clip.Frames, NewPath())
	return r.Len() - 1
}

// AddFrameAfter inserts an empty frame right after index and returns
// the new frame index
func (r *Runner) AddFrameAfter(index int) (int, error) {
	if _, err := r.Frame(index); err != nil {
		return 0, err
	}
	return r.insertFrame(index+1, NewPath()), nil
}

func (r *Runner) insertFrame(at int, p *Path) int {
	r.Clip.Frames = append(r.Clip.Frames, nil)
	copy(r.Clip.Frames[at+1:], r.Clip.Frames[at:])
	r.Clip.Frames[at] = p
	return at
}

func (r *Runner) DeleteFrame(index int) error {
	if _, err := r.Frame(index); err != nil {
		return err
	}
	r.Clip.Frames = append(r.Clip.Frames[:index], r.Clip.Frames[index+1:]...)
	r.currentFrame = WrapFrame(r.currentFrame, r.Len())
	return nil
}

func (r *Runner) SwitchFrame(a, b int) error {
	if _, err := r.Frame(a); err != nil {
		return err
	}
	if _, err := r.Frame(b); err != nil {
		return err
	}
	r.Clip.Frames[a], r.Clip.Frames[b] = r.Clip.Frames[b], r.Clip.Frames[a]
	return nil
}

// DuplicateFrame inserts a deep copy of frame index right after it
func (r *Runner) DuplicateFrame(index int) (int, error) {
	src, err := r.Frame(index)
	if err != nil {
		return 0, err
	}
	dup := NewPath()
	if err := copier.CopyWithOption(dup, src, copier.Option{DeepCopy: true}); err != nil {
		return 0, errors.Wrapf(err, "copy frame %d", index)
	}
	return r.insertFrame(index+1, dup), nil
}
