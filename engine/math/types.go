package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements, row-major with translation in 12..14 */
	Data [16]float32
}

/**
 * @brief Axis aligned bounding box. An empty box has Min > Max on every axis.
 */
type Box3 struct {
	Min Vec3
	Max Vec3
}

/**
 * @brief Represents the transform of an object in the world.
 * Transforms can have a parent whose own transform is then
 * taken into account. The properties should be changed through
 * the setters so the local matrix is regenerated.
 */
type Transform struct {
	/** @brief The position in the world. */
	Position Vec3
	/** @brief Euler rotation in radians, applied X then Y then Z. */
	Rotation Vec3
	/** @brief The scale in the world. */
	Scale Vec3
	/** @brief Set when position, rotation or scale changed since Local was built. */
	IsDirty bool
	Local   Mat4
	/** @brief A pointer to a parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
