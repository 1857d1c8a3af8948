package solar

import (
	"bytes"
	_ "embed"

	"github.com/gekko3d/orrery/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed system.yaml
var DefaultYAML []byte

// SystemDef describes the whole scene: light, projection, shared mesh,
// camera tuning and the body tree.
type SystemDef struct {
	Light      LightDef             `yaml:"light"`
	Projection ProjectionDef        `yaml:"projection"`
	Mesh       MeshDef              `yaml:"mesh"`
	Camera     *core.CameraSettings `yaml:"camera"`
	Material   MaterialDef          `yaml:"material"`
	OrbitAxis  []float32            `yaml:"orbit_axis"`
	SpinAxis   []float32            `yaml:"spin_axis"`
	Bodies     []BodyDef            `yaml:"bodies"`
}

type LightDef struct {
	Position []float32 `yaml:"position"`
	Color    []float32 `yaml:"color"`
}

type ProjectionDef struct {
	FovDegrees float32 `yaml:"fov_degrees"`
	Aspect     float32 `yaml:"aspect"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

type MeshDef struct {
	Slices int     `yaml:"slices"`
	Stacks int     `yaml:"stacks"`
	Radius float32 `yaml:"radius"`
}

type MaterialDef struct {
	Constants []float32 `yaml:"constants"`
	Shininess float32   `yaml:"shininess"`
}

// OrbitDef places a body under a mesh-less pivot that turns every frame.
type OrbitDef struct {
	Scale float32 `yaml:"scale"`
	Speed float32 `yaml:"speed"`
}

type BodyDef struct {
	Name     string    `yaml:"name"`
	Texture  string    `yaml:"texture"`
	Wrap     string    `yaml:"wrap"`
	Scale    float32   `yaml:"scale"`
	Distance float32   `yaml:"distance"`
	Color    []float32 `yaml:"color"`
	// Constants and Shininess override the system material when set.
	Constants []float32 `yaml:"constants"`
	Shininess float32   `yaml:"shininess"`
	Orbit     *OrbitDef `yaml:"orbit"`
	// Revolve turns the body's propagated matrix, carrying its satellites.
	Revolve    float32   `yaml:"revolve"`
	Spin       float32   `yaml:"spin"`
	Satellites []BodyDef `yaml:"satellites"`
}

// Load parses and validates a system definition. Unknown keys are errors.
// Camera keys left out of a camera block keep their defaults.
func Load(data []byte) (*SystemDef, error) {
	camera := core.DefaultCameraSettings()
	def := SystemDef{Camera: &camera}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "parse system definition")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func LoadDefault() (*SystemDef, error) {
	return Load(DefaultYAML)
}

func vec3(field string, v []float32, fallback mgl32.Vec3) (mgl32.Vec3, error) {
	switch len(v) {
	case 0:
		return fallback, nil
	case 3:
		return mgl32.Vec3{v[0], v[1], v[2]}, nil
	}
	return mgl32.Vec3{}, errors.Errorf("%s: want 3 components, got %d", field, len(v))
}

func (d *SystemDef) Validate() error {
	if _, err := vec3("light.position", d.Light.Position, mgl32.Vec3{}); err != nil {
		return err
	}
	if _, err := vec3("light.color", d.Light.Color, mgl32.Vec3{}); err != nil {
		return err
	}
	if _, err := vec3("material.constants", d.Material.Constants, mgl32.Vec3{}); err != nil {
		return err
	}
	for field, axis := range map[string][]float32{"orbit_axis": d.OrbitAxis, "spin_axis": d.SpinAxis} {
		v, err := vec3(field, axis, mgl32.Vec3{0, 1, 0})
		if err != nil {
			return err
		}
		if v.Len() == 0 {
			return errors.Errorf("%s: zero axis", field)
		}
	}

	p := d.Projection
	if p.FovDegrees <= 0 || p.FovDegrees >= 180 {
		return errors.Errorf("projection.fov_degrees %v out of range (0, 180)", p.FovDegrees)
	}
	if p.Near <= 0 || p.Far <= p.Near {
		return errors.Errorf("projection: need 0 < near < far, got near=%v far=%v", p.Near, p.Far)
	}
	if d.Mesh.Slices < 3 || d.Mesh.Stacks < 2 {
		return errors.Errorf("mesh: need at least 3 slices and 2 stacks, got %dx%d", d.Mesh.Slices, d.Mesh.Stacks)
	}
	if c := d.Camera; c != nil {
		if c.PanStep < 0 || c.ZoomStep < 0 {
			return errors.New("camera: steps must not be negative")
		}
		if c.TiltStep <= 0 {
			return errors.Errorf("camera.tilt_step must be positive, got %v", c.TiltStep)
		}
		if c.TiltedAngle <= 0 || c.TiltedAngle > 180 {
			return errors.Errorf("camera.tilted_angle %v out of range (0, 180]", c.TiltedAngle)
		}
		if c.DefaultZ <= 0 {
			return errors.Errorf("camera.default_z must be positive, got %v", c.DefaultZ)
		}
	}

	if len(d.Bodies) == 0 {
		return errors.New("system has no bodies")
	}
	seen := map[string]bool{}
	var check func(b *BodyDef, path string) error
	check = func(b *BodyDef, path string) error {
		if b.Name == "" {
			return errors.Errorf("%s: body without a name", path)
		}
		if seen[b.Name] {
			return errors.Errorf("duplicate body name %q", b.Name)
		}
		seen[b.Name] = true
		if b.Texture == "" {
			return errors.Errorf("body %s: no texture", b.Name)
		}
		if _, err := core.ParseWrapMode(b.Wrap); err != nil {
			return errors.Wrapf(err, "body %s", b.Name)
		}
		if b.Scale <= 0 {
			return errors.Errorf("body %s: scale must be positive", b.Name)
		}
		if b.Orbit != nil && b.Orbit.Scale <= 0 {
			return errors.Errorf("body %s: orbit scale must be positive", b.Name)
		}
		if _, err := vec3("body "+b.Name+" color", b.Color, mgl32.Vec3{}); err != nil {
			return err
		}
		if _, err := vec3("body "+b.Name+" constants", b.Constants, mgl32.Vec3{}); err != nil {
			return err
		}
		for i := range b.Satellites {
			if err := check(&b.Satellites[i], path+"/"+b.Name); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range d.Bodies {
		if err := check(&d.Bodies[i], "bodies"); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits every body, parents before satellites, in definition order.
func (d *SystemDef) Walk(fn func(b *BodyDef)) {
	var visit func(b *BodyDef)
	visit = func(b *BodyDef) {
		fn(b)
		for i := range b.Satellites {
			visit(&b.Satellites[i])
		}
	}
	for i := range d.Bodies {
		visit(&d.Bodies[i])
	}
}

func (d *SystemDef) LightSource() core.Light {
	pos, _ := vec3("", d.Light.Position, mgl32.Vec3{})
	color, _ := vec3("", d.Light.Color, mgl32.Vec3{1, 1, 1})
	return core.Light{Position: pos, Color: color}
}

// ProjectionMatrix is an OpenGL-convention perspective matrix.
func (d *SystemDef) ProjectionMatrix() mgl32.Mat4 {
	p := d.Projection
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(p.FovDegrees), aspect, p.Near, p.Far)
}

func (d *SystemDef) CameraSettings() core.CameraSettings {
	if d.Camera == nil {
		return core.DefaultCameraSettings()
	}
	return *d.Camera
}

// BodyMaterial resolves a body's material against the system defaults.
func (d *SystemDef) BodyMaterial(b *BodyDef) core.Material {
	def := core.DefaultMaterial()
	constants, _ := vec3("", d.Material.Constants, def.Constants)
	shininess := def.Shininess
	if d.Material.Shininess > 0 {
		shininess = d.Material.Shininess
	}

	color, _ := vec3("", b.Color, def.Color)
	constants, _ = vec3("", b.Constants, constants)
	if b.Shininess > 0 {
		shininess = b.Shininess
	}
	return core.NewMaterial(color, constants, shininess)
}

// WrapMode assumes the definition has been validated.
func (b *BodyDef) WrapMode() core.WrapMode {
	w, _ := core.ParseWrapMode(b.Wrap)
	return w
}
