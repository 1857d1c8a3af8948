package geometry

import (
	"encoding/binary"
	"math"
)

const (
	positionStride = 12
	normalStride   = 12
	uvStride       = 8
)

// Segment is a byte range of one attribute inside a packed buffer.
type Segment struct {
	Offset uint64
	Size   uint64
}

// Packed is a mesh laid out attribute by attribute: all positions, then all
// normals, then all UVs. Nothing is interleaved.
type Packed struct {
	Data        []byte
	VertexCount uint32
	Positions   Segment
	Normals     Segment
	UVs         Segment
}

// Layout computes the segment offsets for n vertices.
func Layout(n int) (positions, normals, uvs Segment) {
	count := uint64(n)
	positions = Segment{Offset: 0, Size: positionStride * count}
	normals = Segment{Offset: positionStride * count, Size: normalStride * count}
	uvs = Segment{Offset: (positionStride + normalStride) * count, Size: uvStride * count}
	return positions, normals, uvs
}

// Pack writes the mesh as little-endian float32 segments.
func Pack(m *Mesh) Packed {
	n := m.VertexCount()
	pos, nor, uv := Layout(n)
	data := make([]byte, uv.Offset+uv.Size)

	put := func(off uint64, v float32) {
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(v))
	}
	for i := 0; i < n; i++ {
		base := pos.Offset + uint64(i)*positionStride
		p := m.Positions[i]
		put(base, p[0])
		put(base+4, p[1])
		put(base+8, p[2])

		base = nor.Offset + uint64(i)*normalStride
		nn := m.Normals[i]
		put(base, nn[0])
		put(base+4, nn[1])
		put(base+8, nn[2])

		base = uv.Offset + uint64(i)*uvStride
		t := m.UVs[i]
		put(base, t[0])
		put(base+4, t[1])
	}

	return Packed{
		Data:        data,
		VertexCount: uint32(n),
		Positions:   pos,
		Normals:     nor,
		UVs:         uv,
	}
}
