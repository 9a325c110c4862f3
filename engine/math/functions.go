package math

import (
	m "math"

	"golang.org/x/exp/rand"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief The PI approximation DegToRad has always used. */
	K_DEG_PI float32 = 3.1415
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_DEG_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_DEG_PI
	/** @brief A huge number that should be larger than any valid number used. */
	K_INFINITY float32 = 1e30
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// fkrandom returns a float in [0, 1).
func fkrandom() float32 {
	return rand.Float32()
}

func fkrandom_in_range(min, max float32) float32 {
	return min + fkrandom()*(max-min)
}

/**
 * @brief Converts provided degrees to radians. Uses 3.1415 for PI, so
 * DegToRad(180) is 3.1415 and not math.Pi.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Converts provided radians to degrees, the inverse of DegToRad.
 */
func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}

/**
 * @brief Rotates current around center by angle radians, clockwise for
 * positive angles in a y-up space.
 */
func RotatePoint(center, current Vec2, angle float32) Vec2 {
	c := kcos(angle)
	s := ksin(angle)
	dx := current.X - center.X
	dy := current.Y - center.Y
	return Vec2{
		X: c*dx + s*dy + center.X,
		Y: c*dy - s*dx + center.Y,
	}
}

/**
 * @brief Returns a random point on the surface of a sphere of the given
 * radius centered at the origin.
 */
func RandomPointInSphere(radius float32) Vec3 {
	for {
		v := Vec3{
			X: fkrandom_in_range(-1, 1),
			Y: fkrandom_in_range(-1, 1),
			Z: fkrandom_in_range(-1, 1),
		}
		if v.LengthSquared() > K_FLOAT_EPSILON {
			return v.Normalize().MulScalar(radius)
		}
	}
}

// RandomPointOnCircle returns a random point on a circle of the given radius.
func RandomPointOnCircle(radius float32) Vec2 {
	angle := fkrandom() * K_PI_2
	return Vec2{X: kcos(angle) * radius, Y: ksin(angle) * radius}
}

// RandomPointInCircle returns a point uniformly distributed inside the circle.
func RandomPointInCircle(radius float32) Vec2 {
	a := fkrandom() * K_PI_2
	r := radius * ksqrt(fkrandom())
	return Vec2{X: r * kcos(a), Y: r * ksin(a)}
}

// RandomPointInCircleExp returns a point inside the circle, denser toward the center.
func RandomPointInCircleExp(radius float32) Vec2 {
	a := fkrandom() * K_PI_2
	r := radius * fkrandom()
	return Vec2{X: r * kcos(a), Y: r * ksin(a)}
}

// RandomFloat32s returns n values uniformly drawn from [min, max).
func RandomFloat32s(n int, min, max float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = fkrandom_in_range(min, max)
	}
	return out
}
