package r3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const testTol = 1e-9

func assertMatEqual(t *testing.T, expected, actual mgl64.Mat4) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], testTol, "element %d\nexpected %v\nactual   %v", i, expected, actual)
	}
}

func TestComposeTranslationColumn(t *testing.T) {
	m := Compose(mgl64.Vec3{5, 0, 0}, Euler{}, mgl64.Vec3{1, 1, 1})
	assert.Equal(t, mgl64.Vec4{5, 0, 0, 1}, m.Col(3))
}

var eulerTests = []Euler{
	{},
	{X: 0.3},
	{Y: -1.1},
	{Z: 2.5},
	{X: 0.1, Y: 0.2, Z: 0.3},
	{X: -2.1, Y: 0.7, Z: 1.4},
}

func TestEulerQuatMatchesAxisRotations(t *testing.T) {
	for _, e := range eulerTests {
		assertMatEqual(t, e.Mat4(), e.Quat().Mat4())

		pos, scale := mgl64.Vec3{1, -2, 3}, mgl64.Vec3{2, 0.5, 1.5}
		assertMatEqual(t, Compose(pos, e, scale), ComposeQuat(pos, e, scale))
	}
}

func TestEulerRoundTrip(t *testing.T) {
	for _, e := range eulerTests {
		back := EulerFromMat4(e.Mat4())
		assertMatEqual(t, e.Mat4(), back.Mat4())

		fromQuat := EulerFromQuat(e.Quat())
		assertMatEqual(t, e.Mat4(), fromQuat.Mat4())
	}
}

func TestComposeOrder(t *testing.T) {
	// scale first, then rotate 90 degrees around z, then translate
	m := Compose(mgl64.Vec3{10, 0, 0}, Euler{Z: math.Pi / 2}, mgl64.Vec3{2, 2, 2})
	p := m.Mul4x1(mgl64.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 10, p[0], testTol)
	assert.InDelta(t, 2, p[1], testTol)
	assert.InDelta(t, 0, p[2], testTol)
}

func TestInvert(t *testing.T) {
	matrices := []mgl64.Mat4{
		mgl64.Ident4(),
		Compose(mgl64.Vec3{1, 2, 3}, Euler{X: 0.4, Y: -0.3, Z: 1.2}, mgl64.Vec3{1, 2, 3}),
		mgl64.Perspective(1, 1.5, 0.1, 100),
		mgl64.Ortho(-2, 3, -1, 4, 0.5, 20),
	}
	for _, m := range matrices {
		assertMatEqual(t, m, Invert(Invert(m)))
		assertMatEqual(t, mgl64.Ident4(), m.Mul4(Invert(m)))
	}
}

func TestInvertSingular(t *testing.T) {
	singular := []mgl64.Mat4{
		{},
		Compose(mgl64.Vec3{1, 2, 3}, Euler{}, mgl64.Vec3{0, 1, 1}),
		{1, 2, 3, 4, 2, 4, 6, 8, 0, 1, 0, 0, 0, 0, 1, 0},
	}
	for _, m := range singular {
		assert.Equal(t, mgl64.Mat4{}, Invert(m))
	}
}

func TestDecompose(t *testing.T) {
	pos, rot, scale := mgl64.Vec3{4, -5, 6}, Euler{X: 0.2, Y: 0.4, Z: -0.6}, mgl64.Vec3{1, 2, 3}
	p, r, s := Decompose(Compose(pos, rot, scale))
	assert.InDeltaSlice(t, pos[:], p[:], testTol)
	assert.InDeltaSlice(t, scale[:], s[:], testTol)
	assertMatEqual(t, rot.Mat4(), r.Mat4())
}

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{}, Normalize(mgl64.Vec3{}))
	assert.InDelta(t, 1, Normalize(mgl64.Vec3{3, 4, 0}).Len(), testTol)
}
