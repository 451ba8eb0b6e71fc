package r3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

type CameraKind string

const (
	CameraPerspective  CameraKind = "perspective"
	CameraOrthographic CameraKind = "orthographic"
	CameraOblique      CameraKind = "oblique"
)

// Camera is attached to a Node. Its projection has its own dirty state,
// separate from the node transform, because projection parameters
// change without the node moving.
type Camera interface {
	Kind() CameraKind
	ComputeProjectionMatrix()
	ProjectionMatrix() mgl64.Mat4
	// ViewMatrix is the inverse of the last world matrix seen
	ViewMatrix() mgl64.Mat4
	OnWorldMatrixChange(world mgl64.Mat4)

	IsCameraDirty() bool
	CameraDirty()
	CameraClean()
}

type cameraBase struct {
	projection mgl64.Mat4
	view       mgl64.Mat4
	state      DirtyState
}

func newCameraBase() cameraBase {
	return cameraBase{
		projection: mgl64.Ident4(),
		view:       mgl64.Ident4(),
		state:      Dirty,
	}
}

func (c *cameraBase) ProjectionMatrix() mgl64.Mat4 { return c.projection }
func (c *cameraBase) ViewMatrix() mgl64.Mat4       { return c.view }
func (c *cameraBase) IsCameraDirty() bool          { return c.state == Dirty }
func (c *cameraBase) CameraDirty()                 { c.state = Dirty }
func (c *cameraBase) CameraClean()                 { c.state = Clean }

func (c *cameraBase) OnWorldMatrixChange(world mgl64.Mat4) {
	c.view = Invert(world)
}

// PerspectiveCamera takes fovy in radians
type PerspectiveCamera struct {
	cameraBase
	Fovy, Aspect, Near, Far float64

	viewProjection mgl64.Mat4
}

func NewPerspectiveCamera(fovy, aspect, near, far float64) *PerspectiveCamera {
	c := &PerspectiveCamera{
		cameraBase: newCameraBase(),
		Fovy:       fovy,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
	}
	c.ComputeProjectionMatrix()
	return c
}

func (c *PerspectiveCamera) Kind() CameraKind { return CameraPerspective }

func (c *PerspectiveCamera) Set(fovy, aspect, near, far float64) {
	c.Fovy, c.Aspect, c.Near, c.Far = fovy, aspect, near, far
	c.CameraDirty()
}

// ComputeProjectionMatrix also refreshes the cached view-projection
func (c *PerspectiveCamera) ComputeProjectionMatrix() {
	c.projection = mgl64.Perspective(c.Fovy, c.Aspect, c.Near, c.Far)
	c.viewProjection = c.projection.Mul4(c.view)
}

func (c *PerspectiveCamera) OnWorldMatrixChange(world mgl64.Mat4) {
	c.cameraBase.OnWorldMatrixChange(world)
	c.ComputeProjectionMatrix()
}

// ViewProjection is the value cached by the last projection computation
func (c *PerspectiveCamera) ViewProjection() mgl64.Mat4 { return c.viewProjection }

type OrthographicCamera struct {
	cameraBase
	Left, Right, Top, Bottom, Near, Far float64
}

func NewOrthographicCamera(left, right, top, bottom, near, far float64) *OrthographicCamera {
	c := &OrthographicCamera{
		cameraBase: newCameraBase(),
		Left:       left,
		Right:      right,
		Top:        top,
		Bottom:     bottom,
		Near:       near,
		Far:        far,
	}
	c.ComputeProjectionMatrix()
	return c
}

func (c *OrthographicCamera) Kind() CameraKind { return CameraOrthographic }

func (c *OrthographicCamera) Set(left, right, top, bottom, near, far float64) {
	c.Left, c.Right, c.Top, c.Bottom, c.Near, c.Far = left, right, top, bottom, near, far
	c.CameraDirty()
}

func (c *OrthographicCamera) ComputeProjectionMatrix() {
	c.projection = mgl64.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
}

// ObliqueCamera is an orthographic projection sheared along z.
// Theta and Phi are the angles (radians) between the projectors and the
// x and y axes; Pi/2 for both gives a plain orthographic projection.
type ObliqueCamera struct {
	OrthographicCamera
	Theta, Phi float64
}

func NewObliqueCamera(left, right, top, bottom, near, far, theta, phi float64) *ObliqueCamera {
	c := &ObliqueCamera{
		OrthographicCamera: OrthographicCamera{
			cameraBase: newCameraBase(),
			Left:       left,
			Right:      right,
			Top:        top,
			Bottom:     bottom,
			Near:       near,
			Far:        far,
		},
		Theta: theta,
		Phi:   phi,
	}
	c.ComputeProjectionMatrix()
	return c
}

func (c *ObliqueCamera) Kind() CameraKind { return CameraOblique }

func (c *ObliqueCamera) SetAngles(theta, phi float64) {
	c.Theta, c.Phi = theta, phi
	c.CameraDirty()
}

func (c *ObliqueCamera) ComputeProjectionMatrix() {
	shear := mgl64.Ident4()
	shear[2*4+0] = -cot(c.Theta)
	shear[2*4+1] = -cot(c.Phi)
	c.projection = mgl64.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far).Mul4(shear)
}

func cot(a float64) float64 {
	t := math.Tan(a)
	if t == 0 {
		return 0
	}
	return 1 / t
}

// ViewProjectionMatrix refreshes the world matrix of a camera node and
// returns projection * inverse(world).
func ViewProjectionMatrix(n *Node) (mgl64.Mat4, error) {
	if n.Camera == nil {
		return mgl64.Mat4{}, errors.Errorf("node %q has no camera", n.Name())
	}
	n.ComputeWorldMatrix(true, false)
	return n.Camera.ProjectionMatrix().Mul4(n.Camera.ViewMatrix()), nil
}
