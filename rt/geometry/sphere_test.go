package geometry

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereVertexCount(t *testing.T) {
	m := Sphere(32, 32, 1)
	assert.Equal(t, 32*32*6, m.VertexCount())
	assert.Len(t, m.Normals, m.VertexCount())
	assert.Len(t, m.UVs, m.VertexCount())
}

func TestSphereOnSurfaceWithUnitNormals(t *testing.T) {
	m := Sphere(16, 8, 2.5)
	for i, p := range m.Positions {
		if math.Abs(float64(p.Len()-2.5)) > 1e-4 {
			t.Fatalf("vertex %d at distance %f, want 2.5", i, p.Len())
		}
		if math.Abs(float64(m.Normals[i].Len()-1)) > 1e-4 {
			t.Fatalf("normal %d has length %f", i, m.Normals[i].Len())
		}
		uv := m.UVs[i]
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			t.Fatalf("uv %d out of range: %v", i, uv)
		}
	}
}

func TestSphereWindsOutward(t *testing.T) {
	m := Sphere(12, 10, 1)
	for i := 0; i < m.VertexCount(); i += 3 {
		a, b, c := m.Positions[i], m.Positions[i+1], m.Positions[i+2]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-6 {
			continue // pole triangles collapse
		}
		centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
		if n.Dot(centroid) <= 0 {
			t.Fatalf("triangle %d winds inward", i/3)
		}
	}
}

func TestSphereClampsDegenerateResolution(t *testing.T) {
	m := Sphere(1, 1, 1)
	assert.Equal(t, 3*2*6, m.VertexCount())
}

func TestLayoutIsSegmented(t *testing.T) {
	pos, nor, uv := Layout(100)
	assert.Equal(t, Segment{Offset: 0, Size: 1200}, pos)
	assert.Equal(t, Segment{Offset: 1200, Size: 1200}, nor)
	assert.Equal(t, Segment{Offset: 2400, Size: 800}, uv)
}

func readVec(data []byte, off uint64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off+uint64(4*i):]))
	}
	return out
}

func TestPackWritesEachSegment(t *testing.T) {
	m := &Mesh{
		Positions: []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 0, 1}},
		UVs:       []mgl32.Vec2{{0.25, 0.5}, {0.75, 1}},
	}
	p := Pack(m)
	require.Len(t, p.Data, 2*32)
	assert.Equal(t, uint32(2), p.VertexCount)
	assert.Equal(t, uint64(24), p.Normals.Offset)
	assert.Equal(t, uint64(48), p.UVs.Offset)

	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, readVec(p.Data, p.Positions.Offset, 6))
	assert.Equal(t, []float32{0, 1, 0, 0, 0, 1}, readVec(p.Data, p.Normals.Offset, 6))
	assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, readVec(p.Data, p.UVs.Offset, 4))
}
