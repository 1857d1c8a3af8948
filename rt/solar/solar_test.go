package solar

import (
	"strings"
	"testing"

	"github.com/gekko3d/orrery/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMesh = core.MeshRef{Geometry: 1, First: 0, Count: 6144}

func fakeTextures(def *SystemDef) map[string]core.TextureHandle {
	out := map[string]core.TextureHandle{}
	next := core.TextureHandle(1)
	def.Walk(func(b *BodyDef) {
		out[b.Name] = next
		next++
	})
	return out
}

func buildDefault(t *testing.T) (*SystemDef, *core.Scene, *core.Animator) {
	t.Helper()
	def, err := LoadDefault()
	require.NoError(t, err)
	scene, anim, err := Build(def, testMesh, fakeTextures(def))
	require.NoError(t, err)
	return def, scene, anim
}

func TestDefaultSystemLoads(t *testing.T) {
	def, err := LoadDefault()
	require.NoError(t, err)

	var names []string
	def.Walk(func(b *BodyDef) { names = append(names, b.Name) })
	assert.Equal(t, []string{"sun", "mercury", "earth", "moon", "venus", "mars", "jupiter", "saturn", "uranus", "neptune"}, names)

	assert.Equal(t, core.Light{Position: mgl32.Vec3{0, 0, 0}, Color: mgl32.Vec3{1, 1, 1}}, def.LightSource())
	assert.Equal(t, core.DefaultCameraSettings(), def.CameraSettings())
	assert.Equal(t, 32, def.Mesh.Slices)
	assert.Equal(t, 32, def.Mesh.Stacks)

	want := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	assert.True(t, def.ProjectionMatrix().ApproxEqualThreshold(want, 1e-6))
}

func TestBuildRootOrder(t *testing.T) {
	_, scene, _ := buildDefault(t)

	var roots []string
	for _, id := range scene.Roots {
		roots = append(roots, scene.Node(id).Name)
	}
	assert.Equal(t, []string{
		"sun",
		"mercury-orbit",
		"earth-orbit",
		"venus-orbit",
		"mars-orbit",
		"jupiter-orbit",
		"saturn-orbit",
		"uranus-orbit",
		"neptune-orbit",
	}, roots)
	assert.Equal(t, 18, scene.Len())
}

func TestBuildHierarchy(t *testing.T) {
	_, scene, _ := buildDefault(t)

	earth, ok := scene.Find("earth")
	require.True(t, ok)
	moon, ok := scene.Find("moon")
	require.True(t, ok)
	pivot, ok := scene.Find(PivotName("earth"))
	require.True(t, ok)

	assert.Equal(t, earth, scene.Node(moon).Parent)
	assert.Equal(t, pivot, scene.Node(earth).Parent)
	assert.Equal(t, []core.NodeID{moon}, scene.Node(earth).Children)
	assert.False(t, scene.Node(pivot).Mesh.Drawable())
	assert.Equal(t, testMesh, scene.Node(earth).Mesh)
}

func TestBuildMaterialsAreExplicitPerBody(t *testing.T) {
	_, scene, _ := buildDefault(t)

	material := func(name string) core.Material {
		id, ok := scene.Find(name)
		require.True(t, ok, name)
		return scene.Node(id).Material
	}

	blue := mgl32.Vec3{0, 0, 1}
	for _, planet := range []string{"mercury", "earth", "venus", "mars", "jupiter", "saturn", "uranus", "neptune"} {
		m := material(planet)
		assert.Equal(t, blue, m.Color, planet)
		assert.Equal(t, mgl32.Vec3{0.2, 0.5, 0.4}, m.Constants, planet)
		assert.Equal(t, float32(50), m.Shininess, planet)
	}
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, material("moon").Color)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, material("sun").Constants)

	// a pivot carries the default material; it never borrows its body's
	assert.Equal(t, core.DefaultMaterial(), material(PivotName("earth")))
}

func TestBuildTexturesFollowBodies(t *testing.T) {
	def, scene, _ := buildDefault(t)
	textures := fakeTextures(def)
	def.Walk(func(b *BodyDef) {
		id, ok := scene.Find(b.Name)
		require.True(t, ok)
		assert.Equal(t, textures[b.Name], scene.Node(id).Texture, b.Name)
	})

	var sun, moon, mars *BodyDef
	def.Walk(func(b *BodyDef) {
		switch b.Name {
		case "sun":
			sun = b
		case "moon":
			moon = b
		case "mars":
			mars = b
		}
	})
	assert.Equal(t, core.WrapRepeat, sun.WrapMode())
	assert.Equal(t, core.WrapRepeat, moon.WrapMode())
	assert.Equal(t, core.WrapClamp, mars.WrapMode())
}

func TestBuildInitialPlacement(t *testing.T) {
	_, scene, _ := buildDefault(t)

	pos := func(name string) mgl32.Vec3 {
		id, _ := scene.Find(name)
		return scene.WorldTransform(id).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	}
	assert.InDelta(t, 4.9*0.3*3, pos("mercury").X(), 1e-4)
	assert.InDelta(t, 4.9*0.9*3.5, pos("earth").X(), 1e-4)
	assert.InDelta(t, 4.9*0.9*(3.5+0.1*8), pos("moon").X(), 1e-4)
	assert.InDelta(t, 0, pos("sun").Len(), 1e-6)
}

func TestBuildAnimation(t *testing.T) {
	_, scene, anim := buildDefault(t)

	// sun spin, orbit + spin for eight planets, earth revolve, moon spin
	assert.Equal(t, 19, anim.Len())

	mercury, _ := scene.Find("mercury")
	before := scene.WorldTransform(mercury).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	for i := 0; i < 90; i++ {
		anim.Step(scene)
	}
	after := scene.WorldTransform(mercury).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()

	// 90 frames at 1 degree per frame is a quarter turn about Y
	assert.InDelta(t, before.Len(), after.Len(), 1e-3)
	assert.InDelta(t, 0, after.X(), 1e-3)
	assert.InDelta(t, -before.X(), after.Z(), 1e-3)
}

func TestBuildMissingTexture(t *testing.T) {
	def, err := LoadDefault()
	require.NoError(t, err)
	textures := fakeTextures(def)
	delete(textures, "moon")

	_, _, err = Build(def, testMesh, textures)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moon")
}

func TestLoadRejects(t *testing.T) {
	valid := string(DefaultYAML)
	cases := map[string]string{
		"unknown key":    valid + "\nunknown: 1\n",
		"bad wrap":       strings.Replace(valid, "wrap: clamp", "wrap: border", 1),
		"short color":    strings.Replace(valid, "color: [0, 0, 1]", "color: [0, 1]", 1),
		"duplicate name": strings.Replace(valid, "name: venus", "name: earth", 1),
		"no texture":     strings.Replace(valid, "texture: 2k_mars.png", "texture: \"\"", 1),
		"zero scale":     strings.Replace(valid, "scale: 0.4", "scale: 0", 1),
		"bad near":       strings.Replace(valid, "near: 0.1", "near: 0", 1),
		"bad fov":        strings.Replace(valid, "fov_degrees: 90", "fov_degrees: 180", 1),
		"coarse mesh":    strings.Replace(valid, "slices: 32", "slices: 2", 1),
		"zero tilt step": strings.Replace(valid, "tilt_step: 0.5", "tilt_step: 0", 1),
		"flat tilt":      strings.Replace(valid, "tilted_angle: 90", "tilted_angle: 0", 1),
		"over tilt":      strings.Replace(valid, "tilted_angle: 90", "tilted_angle: 190", 1),
		"camera in sun":  strings.Replace(valid, "default_z: 30", "default_z: 0", 1),
		"not yaml":       "bodies: [",
	}
	for name, src := range cases {
		_, err := Load([]byte(src))
		assert.Error(t, err, name)
	}

	_, err := Load([]byte("projection: {fov_degrees: 90, near: 0.1, far: 100}\nmesh: {slices: 8, stacks: 8}\n"))
	assert.Error(t, err, "no bodies")
}

func TestCameraDefaultsWhenOmitted(t *testing.T) {
	src := `
projection: {fov_degrees: 60, near: 0.5, far: 50}
mesh: {slices: 8, stacks: 4}
bodies:
  - {name: rock, texture: rock.png, scale: 1}
`
	def, err := Load([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCameraSettings(), def.CameraSettings())
	assert.Equal(t, core.DefaultMaterial(), def.BodyMaterial(&def.Bodies[0]))
	assert.Equal(t, core.WrapRepeat, def.Bodies[0].WrapMode())

	scene, anim, err := Build(def, testMesh, map[string]core.TextureHandle{"rock": 4})
	require.NoError(t, err)
	assert.Equal(t, 1, scene.Len())
	assert.Equal(t, 0, anim.Len())
}

func TestPartialCameraBlockKeepsDefaults(t *testing.T) {
	src := `
projection: {fov_degrees: 60, near: 0.5, far: 50}
mesh: {slices: 8, stacks: 4}
camera: {pan_step: 0.1}
bodies:
  - {name: rock, texture: rock.png, scale: 1}
`
	def, err := Load([]byte(src))
	require.NoError(t, err)

	want := core.DefaultCameraSettings()
	want.PanStep = 0.1
	settings := def.CameraSettings()
	assert.Equal(t, want, settings)

	// toggling to tilted mode still eases toward the tilted angle
	cam := core.NewCameraState(settings)
	ctl := core.NewCameraController(settings)
	var in core.InputState
	in.Set(core.ActionToggleMode, true)
	for i := 0; i < 10; i++ {
		ctl.Step(cam, &in)
		in.Set(core.ActionToggleMode, true)
	}
	assert.Equal(t, core.ModeTilted, cam.Mode)
	assert.InDelta(t, 10*want.TiltStep, cam.Tilt, 1e-4)
	assert.Equal(t, mgl32.Vec3{0, 0, want.DefaultZ}, cam.Offset)

	_, err = Load([]byte(strings.Replace(src, "{pan_step: 0.1}", "{tilt_step: 0}", 1)))
	assert.Error(t, err)
}
