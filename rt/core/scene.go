package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// NodeID addresses a node in a Scene. IDs are stable for the life of the scene.
type NodeID int

const NoNode NodeID = -1

type GeometryHandle uint32

type TextureHandle uint32

// WhiteTexture is the fallback every binder provides at handle zero.
const WhiteTexture TextureHandle = 0

// MeshRef is a vertex range inside an uploaded geometry buffer.
type MeshRef struct {
	Geometry GeometryHandle
	First    uint32
	Count    uint32
}

func (m MeshRef) Drawable() bool {
	return m.Count > 0
}

// Node is one element of the scene tree.
//
// Propagated is inherited by the children; Local only applies to the node's
// own geometry. A node without a drawable mesh is a pure transform node.
type Node struct {
	Name       string
	Parent     NodeID
	Children   []NodeID
	Propagated mgl32.Mat4
	Local      mgl32.Mat4
	Mesh       MeshRef
	Texture    TextureHandle
	Material   Material
}

func NewNode(name string) Node {
	return Node{
		Name:       name,
		Parent:     NoNode,
		Propagated: mgl32.Ident4(),
		Local:      mgl32.Ident4(),
		Texture:    WhiteTexture,
		Material:   DefaultMaterial(),
	}
}

// Scene is an arena of nodes plus the ordered list of roots.
type Scene struct {
	nodes []Node
	Roots []NodeID
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) Len() int {
	return len(s.nodes)
}

func (s *Scene) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(s.nodes)
}

// Node returns the node for id, or nil. The pointer is invalidated by the
// next AddRoot/AddChild.
func (s *Scene) Node(id NodeID) *Node {
	if !s.valid(id) {
		return nil
	}
	return &s.nodes[id]
}

func (s *Scene) AddRoot(n Node) NodeID {
	id := NodeID(len(s.nodes))
	n.Parent = NoNode
	n.Children = nil
	s.nodes = append(s.nodes, n)
	s.Roots = append(s.Roots, id)
	return id
}

func (s *Scene) AddChild(parent NodeID, n Node) (NodeID, error) {
	if !s.valid(parent) {
		return NoNode, errors.Errorf("add %q: unknown parent node %d", n.Name, parent)
	}
	id := NodeID(len(s.nodes))
	n.Parent = parent
	n.Children = nil
	s.nodes = append(s.nodes, n)
	s.nodes[parent].Children = append(s.nodes[parent].Children, id)
	return id, nil
}

// Find returns the first node with the given name in arena order.
func (s *Scene) Find(name string) (NodeID, bool) {
	for i := range s.nodes {
		if s.nodes[i].Name == name {
			return NodeID(i), true
		}
	}
	return NoNode, false
}

// Placement is the product of Propagated along the path from the root down
// to id. It is what a traversal has on top of its stack while visiting id.
func (s *Scene) Placement(id NodeID) mgl32.Mat4 {
	if !s.valid(id) {
		return mgl32.Ident4()
	}
	var chain []NodeID
	for n := id; n != NoNode; n = s.nodes[n].Parent {
		chain = append(chain, n)
	}
	m := mgl32.Ident4()
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Mul4(s.nodes[chain[i]].Propagated)
	}
	return m
}

// WorldTransform is Placement(parent) × Propagated × Local. The parent's
// Local never takes part.
func (s *Scene) WorldTransform(id NodeID) mgl32.Mat4 {
	if !s.valid(id) {
		return mgl32.Ident4()
	}
	n := &s.nodes[id]
	parent := mgl32.Ident4()
	if n.Parent != NoNode {
		parent = s.Placement(n.Parent)
	}
	return parent.Mul4(n.Propagated).Mul4(n.Local)
}

// Walk visits nodes depth-first in pre-order, roots in order.
func (s *Scene) Walk(fn func(id NodeID, depth int)) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		fn(id, depth)
		for _, c := range s.nodes[id].Children {
			visit(c, depth+1)
		}
	}
	for _, r := range s.Roots {
		visit(r, 0)
	}
}
