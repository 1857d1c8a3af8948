package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Material holds the per-node shading parameters. Constants are the
// ambient, diffuse and specular weights.
type Material struct {
	Color     mgl32.Vec3
	Constants mgl32.Vec3
	Shininess float32
}

func NewMaterial(color mgl32.Vec3, constants mgl32.Vec3, shininess float32) Material {
	return Material{
		Color:     color,
		Constants: constants,
		Shininess: shininess,
	}
}

// Helper for default white
func DefaultMaterial() Material {
	return Material{
		Color:     mgl32.Vec3{1, 1, 1},
		Constants: mgl32.Vec3{0.2, 0.5, 0.4},
		Shininess: 50,
	}
}

// WrapMode selects how a texture is sampled outside [0,1].
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

func ParseWrapMode(s string) (WrapMode, error) {
	switch s {
	case "repeat", "wrap", "":
		return WrapRepeat, nil
	case "clamp":
		return WrapClamp, nil
	}
	return WrapRepeat, errors.Errorf("unknown wrap mode %q", s)
}

func (w WrapMode) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClamp:
		return "clamp"
	}
	return "unknown"
}

// Light is the single point light of the scene.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}
