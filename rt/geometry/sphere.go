package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is a non-indexed triangle list with per-vertex attributes.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Sphere builds a UV sphere of the given radius centred on the origin.
// Triangles wind counter-clockwise seen from outside; v runs from the +Y pole
// (v=0) to the -Y pole (v=1).
func Sphere(slices, stacks int, radius float32) *Mesh {
	if slices < 3 {
		slices = 3
	}
	if stacks < 2 {
		stacks = 2
	}

	type vertex struct {
		pos, normal mgl32.Vec3
		uv          mgl32.Vec2
	}
	grid := make([]vertex, 0, (stacks+1)*(slices+1))
	for i := 0; i <= stacks; i++ {
		phi := math.Pi * float64(i) / float64(stacks)
		sinPhi, cosPhi := math.Sincos(phi)
		for j := 0; j <= slices; j++ {
			theta := 2 * math.Pi * float64(j) / float64(slices)
			sinTheta, cosTheta := math.Sincos(theta)
			n := mgl32.Vec3{
				float32(sinPhi * cosTheta),
				float32(cosPhi),
				float32(sinPhi * sinTheta),
			}
			grid = append(grid, vertex{
				pos:    n.Mul(radius),
				normal: n,
				uv:     mgl32.Vec2{float32(j) / float32(slices), float32(i) / float32(stacks)},
			})
		}
	}

	count := slices * stacks * 6
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, count),
		Normals:   make([]mgl32.Vec3, 0, count),
		UVs:       make([]mgl32.Vec2, 0, count),
	}
	emit := func(idx ...int) {
		for _, k := range idx {
			m.Positions = append(m.Positions, grid[k].pos)
			m.Normals = append(m.Normals, grid[k].normal)
			m.UVs = append(m.UVs, grid[k].uv)
		}
	}

	row := slices + 1
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := i*row + j
			b := (i+1)*row + j
			c := (i+1)*row + j + 1
			d := i*row + j + 1
			emit(a, c, b)
			emit(a, d, c)
		}
	}
	return m
}
