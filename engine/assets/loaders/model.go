package loaders

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/math"
)

// Mesh summarizes one mesh of a model.
type Mesh struct {
	Name       string
	Primitives int
	Vertices   int
	Indices    int
}

// Model is a parsed 3D model. OBJ files carry their geometry in Positions and
// Indices; glTF files keep the whole Document for a renderer to walk.
type Model struct {
	Locator string
	Format  string
	Meshes  []Mesh
	Bounds  math.Box3

	Positions []math.Vec3
	Indices   []uint32

	Document *gltf.Document
}

// VertexCount sums the vertices of every mesh.
func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.Vertices
	}
	return n
}

type ModelLoader struct{}

func (ml *ModelLoader) Load(ctx context.Context, locator string) (interface{}, error) {
	switch strings.ToLower(path.Ext(locator)) {
	case ".obj":
		r, err := open(ctx, locator)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		model, err := ParseOBJ(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", locator, err)
		}
		model.Locator = locator
		return model, nil

	case ".gltf", ".glb":
		doc, err := ml.decodeGLTF(ctx, locator)
		if err != nil {
			return nil, err
		}
		model := modelFromDocument(doc)
		model.Locator = locator
		return model, nil
	}
	return nil, fmt.Errorf("%w: model %s", core.ErrUnsupportedFormat, locator)
}

func (ml *ModelLoader) decodeGLTF(ctx context.Context, locator string) (*gltf.Document, error) {
	if !isRemote(locator) {
		// external buffers resolve relative to the file
		return gltf.Open(localPath(locator))
	}
	r, err := readAll(ctx, locator)
	if err != nil {
		return nil, err
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (ml *ModelLoader) Unload(asset interface{}) error {
	if m, ok := asset.(*Model); ok {
		m.Positions = nil
		m.Indices = nil
		m.Document = nil
	}
	return nil
}

func modelFromDocument(doc *gltf.Document) *Model {
	model := &Model{
		Format:   "gltf",
		Bounds:   math.NewBox3Empty(),
		Document: doc,
	}
	for _, m := range doc.Meshes {
		mesh := Mesh{Name: m.Name, Primitives: len(m.Primitives)}
		for _, p := range m.Primitives {
			if idx, ok := p.Attributes["POSITION"]; ok && int(idx) < len(doc.Accessors) {
				acr := doc.Accessors[idx]
				mesh.Vertices += int(acr.Count)
				if b, ok := boundsFrom(acr.Min, acr.Max); ok {
					model.Bounds = model.Bounds.Union(b)
				}
			}
			if p.Indices != nil && int(*p.Indices) < len(doc.Accessors) {
				mesh.Indices += int(doc.Accessors[*p.Indices].Count)
			}
		}
		model.Meshes = append(model.Meshes, mesh)
	}
	return model
}

func boundsFrom[T float32 | float64](min, max []T) (math.Box3, bool) {
	if len(min) < 3 || len(max) < 3 {
		return math.Box3{}, false
	}
	return math.NewBox3(
		math.NewVec3(float32(min[0]), float32(min[1]), float32(min[2])),
		math.NewVec3(float32(max[0]), float32(max[1]), float32(max[2])),
	), true
}

// ParseOBJ reads vertex positions and faces of a Wavefront OBJ stream. Faces
// with more than three corners are fanned into triangles; negative indices
// count back from the last vertex. Every "o" or "g" statement starts a mesh.
func ParseOBJ(r io.Reader) (*Model, error) {
	model := &Model{
		Format: "obj",
		Bounds: math.NewBox3Empty(),
	}
	current := -1
	startMesh := func(name string) {
		model.Meshes = append(model.Meshes, Mesh{Name: name, Primitives: 1})
		current = len(model.Meshes) - 1
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "o", "g":
			name := ""
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			startMesh(name)

		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var c [3]float32
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				c[i] = float32(f)
			}
			v := math.NewVec3(c[0], c[1], c[2])
			model.Positions = append(model.Positions, v)
			model.Bounds = model.Bounds.ExpandByPoint(v)
			if current < 0 {
				startMesh("")
			}
			model.Meshes[current].Vertices++

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs 3 vertices", line)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, f := range fields[1:] {
				idx, err := objIndex(f, len(model.Positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				corners = append(corners, idx)
			}
			if current < 0 {
				startMesh("")
			}
			for i := 1; i+1 < len(corners); i++ {
				model.Indices = append(model.Indices, corners[0], corners[i], corners[i+1])
				model.Meshes[current].Indices += 3
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return model, nil
}

// objIndex resolves the position part of a face corner ("3", "3/1", "3//2", "-1").
func objIndex(corner string, count int) (uint32, error) {
	if i := strings.IndexByte(corner, '/'); i >= 0 {
		corner = corner[:i]
	}
	n, err := strconv.Atoi(corner)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("vertex index %s out of range (%d vertices)", corner, count)
	}
	return uint32(n - 1), nil
}
