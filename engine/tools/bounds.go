package tools

import "github.com/spaghettifunk/unify/engine/math"

// AlignByBounds moves t so the object box sits inside the target box. Each
// axis of align picks the side: 0 centers, -1 aligns the negative faces and 1
// the positive faces. It returns the applied translation.
func AlignByBounds(target, object math.Box3, t *math.Transform, align math.Vec3) math.Vec3 {
	ts := target.Size()
	os := object.Size()

	move := target.Center().Sub(object.Center())
	move.X += (ts.X*0.5 - os.X*0.5) * align.X
	move.Y += (ts.Y*0.5 - os.Y*0.5) * align.Y
	move.Z += (ts.Z*0.5 - os.Z*0.5) * align.Z

	t.Translate(move)
	return move
}

// DefaultScaleMode fits the object inside the target on every axis.
var DefaultScaleMode = math.Vec3{X: -1, Y: -1, Z: -1}

// ScaleByBounds scales t relative to the target box. Per axis, a negative
// mode applies the uniform scale that fits the object inside the target
// without ever enlarging it, a positive mode stretches to the target times
// the mode, and 0 leaves the axis alone. It returns the applied scale.
func ScaleByBounds(target, object math.Box3, t *math.Transform, mode math.Vec3) math.Vec3 {
	ts := target.Size()
	os := object.Size()
	ratio := math.NewVec3(safeRatio(ts.X, os.X), safeRatio(ts.Y, os.Y), safeRatio(ts.Z, os.Z))

	limit := min(1, ratio.X, ratio.Y, ratio.Z)
	apply := math.NewVec3(limit, limit, limit)

	apply.X = axisScale(apply.X, ratio.X, mode.X)
	apply.Y = axisScale(apply.Y, ratio.Y, mode.Y)
	apply.Z = axisScale(apply.Z, ratio.Z, mode.Z)

	t.ScaleIt(apply)
	return apply
}

func axisScale(limit, ratio, mode float32) float32 {
	switch {
	case mode > 0:
		return ratio * mode
	case mode == 0:
		return 1
	}
	return limit
}

func safeRatio(a, b float32) float32 {
	if b == 0 {
		return 1
	}
	return a / b
}

// CenterOnPoint moves t so the center of the object box lands on point.
func CenterOnPoint(object math.Box3, t *math.Transform, point math.Vec3) {
	t.Translate(point.Sub(object.Center()))
}
