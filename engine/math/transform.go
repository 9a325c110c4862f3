package math

func TransformCreate() *Transform {
	return TransformFromPosition(NewVec3Zero())
}

func TransformFromPosition(position Vec3) *Transform {
	return &Transform{
		Position: position,
		Scale:    NewVec3One(),
		Local:    NewMat4Identity(),
	}
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

func (t *Transform) SetRotation(rotation Vec3) {
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) Rotate(rotation Vec3) {
	t.Rotation = t.Rotation.Add(rotation)
	t.IsDirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) ScaleIt(scale Vec3) {
	t.Scale = t.Scale.Mul(scale)
	t.IsDirty = true
}

func (t *Transform) GetLocal() Mat4 {
	if t != nil {
		if t.IsDirty {
			t.Local = NewMat4Compose(t.Position, t.Rotation, t.Scale)
			t.IsDirty = false
		}
		return t.Local
	}
	return NewMat4Identity()
}

func (t *Transform) GetWorld() Mat4 {
	if t != nil {
		l := t.GetLocal()
		if t.Parent != nil {
			p := t.Parent.GetWorld()
			return l.Mul(p)
		}
		return l
	}
	return NewMat4Identity()
}

// WorldDirection is the world space direction of the local +Z axis.
func (t *Transform) WorldDirection() Vec3 {
	return NewVec3Forward().TransformDirection(t.GetWorld()).Normalize()
}

// ForwardPoint returns the point distance units ahead of the transform along
// its world direction, offset from its local position.
func ForwardPoint(t *Transform, distance float32) Vec3 {
	return t.WorldDirection().MulScalar(distance).Add(t.Position)
}
