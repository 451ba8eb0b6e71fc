package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func DegreeToRadiansV3(v mgl64.Vec3) mgl64.Vec3 {
	return v.Mul(math.Pi / 180)
}

func RadiansToDegreeV3(v mgl64.Vec3) mgl64.Vec3 {
	return v.Mul(180 / math.Pi)
}

// Mat4Array flattens m column-major, the layout WebGL uniforms expect
func Mat4Array(m mgl64.Mat4) [16]float64 {
	return [16]float64(m)
}
