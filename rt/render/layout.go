package render

import (
	"encoding/binary"
	"math"
	"regexp"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Role is the meaning of a per-draw uniform, independent of its name in a
// given shader.
type Role int

const (
	RoleMVP Role = iota
	RoleModel
	RoleInverseModel
	RoleColor
	RoleConstants
	RoleShininess
	RoleLightPosition
	RoleLightColor
	RoleCameraPosition
	roleCount
)

type kind int

const (
	kindF32 kind = iota
	kindVec3
	kindVec4
	kindMat3
	kindMat4
)

var roleNames = map[string]Role{
	"mvp":             RoleMVP,
	"model":           RoleModel,
	"inv_model":       RoleInverseModel,
	"color":           RoleColor,
	"constants":       RoleConstants,
	"shininess":       RoleShininess,
	"light_position":  RoleLightPosition,
	"light_color":     RoleLightColor,
	"camera_position": RoleCameraPosition,
}

var roleKinds = [roleCount]kind{
	RoleMVP:            kindMat4,
	RoleModel:          kindMat4,
	RoleInverseModel:   kindMat3,
	RoleColor:          kindVec3,
	RoleConstants:      kindVec3,
	RoleShininess:      kindF32,
	RoleLightPosition:  kindVec3,
	RoleLightColor:     kindVec3,
	RoleCameraPosition: kindVec3,
}

func (r Role) String() string {
	for name, role := range roleNames {
		if role == r {
			return name
		}
	}
	return "unknown"
}

// WGSL uniform address space alignment and size.
func kindOf(typ string) (k kind, align, size uint32, ok bool) {
	switch typ {
	case "f32":
		return kindF32, 4, 4, true
	case "vec3<f32>", "vec3f":
		return kindVec3, 16, 12, true
	case "vec4<f32>", "vec4f":
		return kindVec4, 16, 16, true
	case "mat3x3<f32>", "mat3x3f":
		return kindMat3, 16, 48, true
	case "mat4x4<f32>", "mat4x4f":
		return kindMat4, 16, 64, true
	}
	return 0, 0, 0, false
}

type field struct {
	name   string
	kind   kind
	offset uint32
}

// UniformLayout maps each Role to its byte offset inside the uniform block.
// It is resolved once from shader source and used for every draw.
type UniformLayout struct {
	Struct string
	fields [roleCount]field
	order  []Role
	size   uint32
}

var (
	commentRe = regexp.MustCompile(`//[^\n]*`)
	memberRe  = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*([\w<>]+)$`)
)

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) / align * align
}

// ParseUniformLayout reads the members of the named WGSL struct and computes
// their offsets. Every Role must be present exactly once with its expected type.
func ParseUniformLayout(src, structName string) (*UniformLayout, error) {
	src = commentRe.ReplaceAllString(src, "")
	head := regexp.MustCompile(`struct\s+` + regexp.QuoteMeta(structName) + `\s*\{`)
	loc := head.FindStringIndex(src)
	if loc == nil {
		return nil, errors.Errorf("struct %s not found", structName)
	}
	end := strings.Index(src[loc[1]:], "}")
	if end < 0 {
		return nil, errors.Errorf("struct %s is not closed", structName)
	}
	body := src[loc[1] : loc[1]+end]

	l := &UniformLayout{Struct: structName}
	var seen [roleCount]bool
	var offset, maxAlign uint32 = 0, 4
	for _, raw := range strings.Split(body, ",") {
		member := strings.Join(strings.Fields(raw), " ")
		if member == "" {
			continue
		}
		m := memberRe.FindStringSubmatch(strings.ReplaceAll(member, " <", "<"))
		if m == nil {
			return nil, errors.Errorf("struct %s: cannot parse member %q", structName, member)
		}
		name, typ := m[1], strings.ReplaceAll(m[2], " ", "")
		role, ok := roleNames[name]
		if !ok {
			return nil, errors.Errorf("struct %s: member %q has no known role", structName, name)
		}
		if seen[role] {
			return nil, errors.Errorf("struct %s: member %q declared twice", structName, name)
		}
		k, align, size, ok := kindOf(typ)
		if !ok {
			return nil, errors.Errorf("struct %s: member %q has unsupported type %s", structName, name, typ)
		}
		if k != roleKinds[role] {
			return nil, errors.Errorf("struct %s: member %q has type %s, which does not fit its role", structName, name, typ)
		}
		offset = alignUp(offset, align)
		l.fields[role] = field{name: name, kind: k, offset: offset}
		l.order = append(l.order, role)
		seen[role] = true
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
	}
	for r := Role(0); r < roleCount; r++ {
		if !seen[r] {
			return nil, errors.Errorf("struct %s: no member for role %s", structName, r)
		}
	}
	l.size = alignUp(offset, maxAlign)
	return l, nil
}

// Size is the struct size, rounded to its alignment.
func (l *UniformLayout) Size() uint32 {
	return l.size
}

func (l *UniformLayout) Offset(r Role) (uint32, bool) {
	if r < 0 || r >= roleCount {
		return 0, false
	}
	return l.fields[r].offset, true
}

// Compatible reports whether two stages declare the same block.
func (l *UniformLayout) Compatible(other *UniformLayout) error {
	if l.size != other.size {
		return errors.Errorf("uniform block size %d does not match %d", l.size, other.size)
	}
	for r := Role(0); r < roleCount; r++ {
		if l.fields[r].offset != other.fields[r].offset {
			return errors.Errorf("uniform %s at offset %d does not match %d", r, l.fields[r].offset, other.fields[r].offset)
		}
	}
	return nil
}

// Encode writes u into dst at the resolved offsets. dst must hold Size() bytes.
func (l *UniformLayout) Encode(dst []byte, u *Uniforms) {
	l.putMat4(dst, RoleMVP, u.MVP)
	l.putMat4(dst, RoleModel, u.Model)
	l.putMat3(dst, RoleInverseModel, u.InverseModel)
	l.putVec3(dst, RoleColor, u.Color)
	l.putVec3(dst, RoleConstants, u.Constants)
	l.putF32(dst, l.fields[RoleShininess].offset, u.Shininess)
	l.putVec3(dst, RoleLightPosition, u.LightPosition)
	l.putVec3(dst, RoleLightColor, u.LightColor)
	l.putVec3(dst, RoleCameraPosition, u.CameraPosition)
}

func (l *UniformLayout) putF32(dst []byte, off uint32, v float32) {
	binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
}

func (l *UniformLayout) putVec3(dst []byte, r Role, v mgl32.Vec3) {
	off := l.fields[r].offset
	for i := 0; i < 3; i++ {
		l.putF32(dst, off+uint32(4*i), v[i])
	}
}

func (l *UniformLayout) putMat3(dst []byte, r Role, m mgl32.Mat3) {
	off := l.fields[r].offset
	// each column is padded to 16 bytes
	for c := 0; c < 3; c++ {
		for row := 0; row < 3; row++ {
			l.putF32(dst, off+uint32(16*c+4*row), m[3*c+row])
		}
	}
}

func (l *UniformLayout) putMat4(dst []byte, r Role, m mgl32.Mat4) {
	off := l.fields[r].offset
	for i := 0; i < 16; i++ {
		l.putF32(dst, off+uint32(4*i), m[i])
	}
}
