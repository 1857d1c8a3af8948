package app

import (
	"io/fs"
	"os"

	"github.com/gekko3d/orrery/rt/assets"
	"github.com/gekko3d/orrery/rt/core"
	"github.com/gekko3d/orrery/rt/geometry"
	"github.com/gekko3d/orrery/rt/logging"
	"github.com/gekko3d/orrery/rt/render"
	"github.com/gekko3d/orrery/rt/shaders"
	"github.com/gekko3d/orrery/rt/solar"

	"github.com/pkg/errors"
)

// BodyTexture is a decoded texture waiting for upload.
type BodyTexture struct {
	Asset assets.AssetId
	Wrap  core.WrapMode
	// Bodies lists every body that samples this file with this wrap mode.
	Bodies []string
}

// Prepared is the CPU half of startup: everything that can fail without a
// window or device.
type Prepared struct {
	Def            *solar.SystemDef
	VertexSource   string
	FragmentSource string
	Layout         *render.UniformLayout
	Mesh           *geometry.Mesh
	Textures       []BodyTexture
	Assets         *assets.Server
}

func loadDefinition(cfg Config) (*solar.SystemDef, error) {
	if cfg.SystemFile == "" {
		return solar.LoadDefault()
	}
	data, err := os.ReadFile(cfg.SystemFile)
	if err != nil {
		return nil, errors.Wrap(err, "read system file")
	}
	return solar.Load(data)
}

// loadShaders reads both planet stages and checks they agree on the
// per-draw uniform block.
func loadShaders(server *assets.Server, validate bool) (vertex, fragment string, layout *render.UniformLayout, err error) {
	vid, err := server.LoadShader(shaders.FS, shaders.PlanetVertex)
	if err != nil {
		return "", "", nil, err
	}
	fid, err := server.LoadShader(shaders.FS, shaders.PlanetFragment)
	if err != nil {
		return "", "", nil, err
	}
	vs, _ := server.Shader(vid)
	fsrc, _ := server.Shader(fid)

	layout, err = render.ParseUniformLayout(vs.Source, shaders.UniformStruct)
	if err != nil {
		return "", "", nil, errors.Wrap(err, vs.Name)
	}
	fragLayout, err := render.ParseUniformLayout(fsrc.Source, shaders.UniformStruct)
	if err != nil {
		return "", "", nil, errors.Wrap(err, fsrc.Name)
	}
	if err := layout.Compatible(fragLayout); err != nil {
		return "", "", nil, errors.Wrap(err, "stages disagree")
	}

	if validate {
		if err := assets.ValidateShader(vs.Name, vs.Source, shaders.VertexEntry); err != nil {
			return "", "", nil, err
		}
		if err := assets.ValidateShader(fsrc.Name, fsrc.Source, shaders.FragmentEntry); err != nil {
			return "", "", nil, err
		}
	}
	return vs.Source, fsrc.Source, layout, nil
}

type textureKey struct {
	file string
	wrap core.WrapMode
}

// loadTextures decodes every body texture once per (file, wrap) pair.
func loadTextures(server *assets.Server, fsys fs.FS, def *solar.SystemDef) ([]BodyTexture, error) {
	var out []BodyTexture
	index := map[textureKey]int{}
	var firstErr error

	def.Walk(func(b *solar.BodyDef) {
		if firstErr != nil {
			return
		}
		key := textureKey{file: b.Texture, wrap: b.WrapMode()}
		if i, ok := index[key]; ok {
			out[i].Bodies = append(out[i].Bodies, b.Name)
			return
		}
		id, err := server.LoadTexture(fsys, b.Texture)
		if err != nil {
			firstErr = errors.Wrapf(err, "body %s", b.Name)
			return
		}
		index[key] = len(out)
		out = append(out, BodyTexture{Asset: id, Wrap: key.wrap, Bodies: []string{b.Name}})
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Prepare loads the definition, shaders, sphere mesh and textures. Errors
// are *StartupError.
func Prepare(cfg Config, textures fs.FS, log logging.Logger) (*Prepared, error) {
	log = logging.OrNop(log)
	p := &Prepared{Assets: assets.NewServer(log.With("assets"))}

	def, err := loadDefinition(cfg)
	if err != nil {
		return nil, fail(StageDefinition, err)
	}
	p.Def = def

	p.VertexSource, p.FragmentSource, p.Layout, err = loadShaders(p.Assets, cfg.Debug)
	if err != nil {
		return nil, fail(StageShader, err)
	}
	log.Debugf("uniform block %s: %d bytes", shaders.UniformStruct, p.Layout.Size())

	radius := def.Mesh.Radius
	if radius <= 0 {
		radius = 1
	}
	p.Mesh = geometry.Sphere(def.Mesh.Slices, def.Mesh.Stacks, radius)
	if p.Mesh.VertexCount() == 0 {
		return nil, fail(StageGeometry, errors.New("sphere has no vertices"))
	}

	p.Textures, err = loadTextures(p.Assets, textures, def)
	if err != nil {
		return nil, fail(StageTexture, err)
	}
	log.Infof("loaded %d textures for %d bodies", len(p.Textures), countBodies(def))
	return p, nil
}

func countBodies(def *solar.SystemDef) int {
	n := 0
	def.Walk(func(*solar.BodyDef) { n++ })
	return n
}
