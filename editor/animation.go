package editor

import (
	"context"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/mogaika/scene_editor/anm"
)

func (s *State) runner(i int) (*anm.Runner, error) {
	if i < 0 || i >= len(s.Runners) {
		return nil, errors.Errorf("animation %d out of range (%d animations)", i, len(s.Runners))
	}
	return s.Runners[i], nil
}

// doRunner runs fn with animation i on the loop goroutine
func (e *Editor) doRunner(ctx context.Context, i int, fn func(s *State, r *anm.Runner) error) error {
	return e.Do(ctx, func(s *State) error {
		r, err := s.runner(i)
		if err != nil {
			return err
		}
		return fn(s, r)
	})
}

// AddAnimation creates a one frame clip animating target and returns its
// index
func (e *Editor) AddAnimation(ctx context.Context, target uuid.UUID, name string) (index int, err error) {
	err = e.Do(ctx, func(s *State) error {
		n, err := s.node(target)
		if err != nil {
			return err
		}
		if name == "" {
			name = e.names.RandomName(func(name string) bool {
				for _, r := range s.Runners {
					if r.Clip.Name == name {
						return true
					}
				}
				return false
			})
		}
		r := anm.NewRunner(n, anm.NewClip(name, 1), e.opts.DefaultFPS, e.opts.DefaultTween)
		e.bindRunner(r)
		s.Runners = append(s.Runners, r)
		index = len(s.Runners) - 1
		return nil
	})
	return index, err
}

func (e *Editor) RemoveAnimation(ctx context.Context, i int) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		r.OnFrameChange = nil
		s.Runners = append(s.Runners[:i], s.Runners[i+1:]...)
		return nil
	})
}

// Animation returns a detached copy of the clip of animation i
func (e *Editor) Animation(ctx context.Context, i int) (clip *anm.Clip, err error) {
	err = e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		clip = &anm.Clip{}
		return errors.Wrap(copier.CopyWithOption(clip, r.Clip, copier.Option{DeepCopy: true}), "copy clip")
	})
	return clip, err
}

func (e *Editor) Play(ctx context.Context, i int, playing bool) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		r.IsPlaying = playing
		if !playing {
			// snap back from a partially tweened pose
			r.SetCurrentFrame(r.CurrentFrame())
		}
		return nil
	})
}

func (e *Editor) SetReverse(ctx context.Context, i int, reverse bool) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		r.Reverse = reverse
		return nil
	})
}

func (e *Editor) SetTween(ctx context.Context, i int, tween anm.Tween) error {
	if _, err := anm.ParseTween(string(tween)); err != nil {
		return err
	}
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		r.Tween = tween
		return nil
	})
}

func (e *Editor) SetFPS(ctx context.Context, i int, fps float64) error {
	if fps <= 0 {
		return errors.Errorf("fps must be positive, got %v", fps)
	}
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		r.FPS = fps
		return nil
	})
}

// SetFrame wraps f into the clip and snaps the target to it
func (e *Editor) SetFrame(ctx context.Context, i, f int) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		r.SetCurrentFrame(f)
		return nil
	})
}

// AddFrame inserts an empty frame after frame after, or appends it when
// after is negative, and returns the new frame index
func (e *Editor) AddFrame(ctx context.Context, i, after int) (frame int, err error) {
	err = e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		if after < 0 {
			frame = r.AddFrame()
			return nil
		}
		frame, err = r.AddFrameAfter(after)
		return err
	})
	return frame, err
}

func (e *Editor) DeleteFrame(ctx context.Context, i, f int) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		if r.Len() == 1 {
			return errors.New("can not delete the last frame")
		}
		if err := r.DeleteFrame(f); err != nil {
			return err
		}
		r.SetCurrentFrame(r.CurrentFrame())
		return nil
	})
}

func (e *Editor) SwitchFrame(ctx context.Context, i, a, b int) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		if err := r.SwitchFrame(a, b); err != nil {
			return err
		}
		r.ApplyFrame()
		return nil
	})
}

func (e *Editor) DuplicateFrame(ctx context.Context, i, f int) (frame int, err error) {
	err = e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		frame, err = r.DuplicateFrame(f)
		return err
	})
	return frame, err
}

// AddKeyframe records the current transform of the focused node into the
// current frame of animation i
func (e *Editor) AddKeyframe(ctx context.Context, i int) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		if s.Focused == nil {
			return errors.New("no focused node")
		}
		k, err := r.AddKeyframe(s.Focused)
		if err != nil {
			return err
		}
		k.Capture(s.Focused.Transform())
		return nil
	})
}

// RemoveKeyframe drops the focused node keyframe from the current frame
func (e *Editor) RemoveKeyframe(ctx context.Context, i int) error {
	return e.doRunner(ctx, i, func(s *State, r *anm.Runner) error {
		if s.Focused == nil {
			return errors.New("no focused node")
		}
		removed, err := r.RemoveKeyframe(s.Focused)
		if err != nil {
			return err
		}
		if !removed {
			return errors.Errorf("node %q has no keyframe in frame %d", s.Focused.Name(), r.CurrentFrame())
		}
		return nil
	})
}
