package tools

import (
	"github.com/spaghettifunk/unify/engine/assets/loaders"
	"github.com/spaghettifunk/unify/engine/math"
)

type PointCloudConfig struct {
	Count int
	// Positions holds Count*3 coordinates. Random in [-50, 50) when nil.
	Positions []float32
	// Colors holds Count*3 RGB values in 0-1. White when nil.
	Colors []float32
	// Sizes holds Count point sizes. 1 when nil.
	Sizes []float32
}

// PointCloud is a set of points with per point position, color and size.
// Accessors that hand out a buffer for editing mark it dirty.
type PointCloud struct {
	Transform *math.Transform

	positions []float32
	colors    []float32
	sizes     []float32

	positionsDirty bool
	colorsDirty    bool
	sizesDirty     bool
}

func NewPointCloud(cfg PointCloudConfig) *PointCloud {
	if cfg.Positions != nil {
		cfg.Count = len(cfg.Positions) / 3
	} else if cfg.Count <= 0 {
		cfg.Count = 1000
	}
	p := &PointCloud{
		Transform: math.TransformCreate(),
		positions: cfg.Positions,
		colors:    cfg.Colors,
		sizes:     cfg.Sizes,
	}
	if p.positions == nil {
		p.positions = math.RandomFloat32s(cfg.Count*3, -50, 50)
	}
	if p.colors == nil {
		p.colors = filled(cfg.Count*3, 1)
	}
	if p.sizes == nil {
		p.sizes = filled(cfg.Count, 1)
	}
	return p
}

func filled(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (p *PointCloud) Count() int {
	return len(p.positions) / 3
}

func (p *PointCloud) Positions() []float32 {
	p.positionsDirty = true
	return p.positions
}

func (p *PointCloud) SetPositions(positions []float32) {
	p.positions = positions
}

func (p *PointCloud) Colors() []float32 {
	return p.colors
}

func (p *PointCloud) SetColors(colors []float32) {
	p.colors = colors
	p.colorsDirty = true
}

func (p *PointCloud) Sizes() []float32 {
	p.sizesDirty = true
	return p.sizes
}

func (p *PointCloud) SetSizes(sizes []float32) {
	p.sizes = sizes
}

// Dirty reports which buffers need uploading, in position, color, size order.
func (p *PointCloud) Dirty() (bool, bool, bool) {
	return p.positionsDirty, p.colorsDirty, p.sizesDirty
}

func (p *PointCloud) ClearDirty() {
	p.positionsDirty, p.colorsDirty, p.sizesDirty = false, false, false
}

// PointsFromVertices builds a point cloud on the given vertices, copying the
// position and scale of the source transform.
func PointsFromVertices(vertices []math.Vec3, source *math.Transform) *PointCloud {
	positions := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		positions = append(positions, v.X, v.Y, v.Z)
	}
	p := NewPointCloud(PointCloudConfig{Count: len(vertices), Positions: positions})
	if source != nil {
		p.Transform.SetPosition(source.Position)
		p.Transform.SetScale(source.Scale)
	}
	return p
}

// PointsFromModel builds a point cloud on the vertices of an OBJ model.
func PointsFromModel(model *loaders.Model, source *math.Transform) *PointCloud {
	return PointsFromVertices(model.Positions, source)
}
