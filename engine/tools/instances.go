package tools

import (
	"fmt"

	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/math"
)

type Mesh2DGridConfig struct {
	// GeometrySize is the bounding box size of the instanced geometry.
	GeometrySize math.Vec3
	XCount       int
	ZCount       int
	XSpacing     float32
	ZSpacing     float32
	// Stagger offsets every other row by a quarter of the geometry width.
	Stagger bool
}

// DefaultMesh2DGridConfig is a 10 by 10 grid of unit spheres.
func DefaultMesh2DGridConfig() Mesh2DGridConfig {
	return Mesh2DGridConfig{
		GeometrySize: math.NewVec3(2, 2, 2),
		XCount:       10,
		ZCount:       10,
	}
}

// BuildMesh2DGrid returns one transform per instance of a grid on the XZ plane
// centered on the origin. Instances are ordered by x, then z.
func BuildMesh2DGrid(cfg Mesh2DGridConfig) []math.Mat4 {
	size := cfg.GeometrySize
	xTotal := (size.X + cfg.XSpacing) * float32(cfg.XCount)
	zTotal := (size.Z + cfg.ZSpacing) * float32(cfg.ZCount)

	out := make([]math.Mat4, 0, cfg.XCount*cfg.ZCount)
	for x := 0; x < cfg.XCount; x++ {
		for z := 0; z < cfg.ZCount; z++ {
			var rowOffset float32
			if cfg.Stagger {
				if z%2 == 0 {
					rowOffset = 0.25 * size.X
				} else {
					rowOffset = -0.25 * size.X
				}
			}
			pos := math.NewVec3(
				rowOffset+float32(x)*(size.X+cfg.XSpacing)-xTotal/2,
				0,
				float32(z)*(size.Z+cfg.ZSpacing)-zTotal/2,
			)
			out = append(out, math.NewMat4Translation(pos))
		}
	}
	return out
}

// InstanceBuffer keeps one editable transform per instance and writes the
// touched ones to the matrix array on Update, which should run every frame.
type InstanceBuffer struct {
	transforms    []*math.Transform
	matrices      []math.Mat4
	colors        []float32
	updateIndexes []int
	needsUpload   bool
}

func NewInstanceBuffer(count int) *InstanceBuffer {
	b := &InstanceBuffer{
		transforms: make([]*math.Transform, count),
		matrices:   make([]math.Mat4, count),
	}
	for i := range b.transforms {
		b.transforms[i] = math.TransformCreate()
		b.matrices[i] = math.NewMat4Identity()
	}
	return b
}

// NewInstanceBufferFromGrid seeds the instances with grid positions.
func NewInstanceBufferFromGrid(cfg Mesh2DGridConfig) *InstanceBuffer {
	grid := BuildMesh2DGrid(cfg)
	b := NewInstanceBuffer(len(grid))
	for i, mt := range grid {
		b.transforms[i].SetPosition(mt.Position())
		b.matrices[i] = mt
	}
	b.needsUpload = true
	return b
}

func (b *InstanceBuffer) Count() int {
	return len(b.transforms)
}

// Transform returns the transform of instance index and schedules it for the
// next Update. Asking for more transforms than there are instances between two
// updates flushes early.
func (b *InstanceBuffer) Transform(index int) *math.Transform {
	b.updateIndexes = append(b.updateIndexes, index)
	if len(b.updateIndexes) > len(b.transforms) {
		core.LogError("instance buffer update overflow: did you forget to call InstanceBuffer.Update()?")
		b.Update()
	}
	return b.transforms[index]
}

// Update writes every touched transform into its instance matrix.
func (b *InstanceBuffer) Update() {
	for _, idx := range b.updateIndexes {
		b.matrices[idx] = b.transforms[idx].GetLocal()
	}
	b.updateIndexes = b.updateIndexes[:0]
	b.needsUpload = true
}

// Pending is the number of transforms waiting for Update.
func (b *InstanceBuffer) Pending() int {
	return len(b.updateIndexes)
}

// Matrices returns the instance matrices and clears the upload flag.
func (b *InstanceBuffer) Matrices() []math.Mat4 {
	b.needsUpload = false
	return b.matrices
}

func (b *InstanceBuffer) NeedsUpload() bool {
	return b.needsUpload
}

// SetColors replaces the per instance RGB colors. There must be one triple
// per instance.
func (b *InstanceBuffer) SetColors(rgb []float32) error {
	if len(rgb) != len(b.transforms)*3 {
		return fmt.Errorf("got %d color values for %d instances", len(rgb), len(b.transforms))
	}
	b.colors = rgb
	return nil
}

func (b *InstanceBuffer) Colors() []float32 {
	return b.colors
}
