package shaders

import (
	"embed"
)

//go:embed planet.vert.wgsl planet.frag.wgsl
var FS embed.FS

const (
	PlanetVertex   = "planet.vert.wgsl"
	PlanetFragment = "planet.frag.wgsl"

	// UniformStruct is the per-draw block both planet stages declare.
	UniformStruct = "NodeUniforms"

	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)
