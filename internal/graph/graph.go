// Package graph is the scene graph: every node is an ECS entity carrying a
// local transform and a parent link. Components create their nodes here and
// remove them on teardown; the renderer resolves world matrices from it.
package graph

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"
)

var ErrDeadNode = errors.New("graph: node has been removed")

// Transform is a node's placement relative to its parent.
type Transform struct {
	Position  mgl64.Vec3
	RotationX float64 // radians
	RotationY float64 // radians
	Scale     float64
	Visible   bool
}

// Identity is the rest transform: origin, unrotated, unit scale, shown.
func Identity() Transform {
	return Transform{Scale: 1, Visible: true}
}

// Local is the node-to-parent matrix: translate, rotate Y, rotate X, scale.
func (t Transform) Local() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(mgl64.HomogRotate3DY(t.RotationY)).
		Mul4(mgl64.HomogRotate3DX(t.RotationX)).
		Mul4(mgl64.Scale3D(t.Scale, t.Scale, t.Scale))
}

// Hierarchy links a node to its parent.
type Hierarchy struct {
	Parent ecs.Entity
	Root   bool
	Name   string
}

// Node is a handle to a scene graph entity.
type Node struct {
	e ecs.Entity
}

// Graph owns the ECS world backing the scene.
type Graph struct {
	world      *ecs.World
	nodes      *ecs.Map2[Transform, Hierarchy]
	transforms *ecs.Map[Transform]
	links      *ecs.Map[Hierarchy]
	filter     *ecs.Filter1[Hierarchy]
	root       Node
}

// New creates a graph with a single root node.
func New() *Graph {
	w := ecs.NewWorld(256)
	g := &Graph{
		world:      w,
		nodes:      ecs.NewMap2[Transform, Hierarchy](w),
		transforms: ecs.NewMap[Transform](w),
		links:      ecs.NewMap[Hierarchy](w),
		filter:     ecs.NewFilter1[Hierarchy](w),
	}
	tr := Identity()
	g.root = Node{g.nodes.NewEntity(&tr, &Hierarchy{Root: true, Name: "root"})}
	return g
}

// Root returns the top node. It is never removed.
func (g *Graph) Root() Node { return g.root }

// NewNode attaches an identity-transform child to parent.
func (g *Graph) NewNode(name string, parent Node) (Node, error) {
	if !g.Alive(parent) {
		return Node{}, fmt.Errorf("attach %q: %w", name, ErrDeadNode)
	}
	tr := Identity()
	e := g.nodes.NewEntity(&tr, &Hierarchy{Parent: parent.e, Name: name})
	return Node{e}, nil
}

// Alive reports whether n still exists.
func (g *Graph) Alive(n Node) bool {
	return !n.e.IsZero() && g.world.Alive(n.e)
}

// Transform returns the node's mutable local transform, or nil once the
// node has been removed.
func (g *Graph) Transform(n Node) *Transform {
	if !g.Alive(n) {
		return nil
	}
	return g.transforms.Get(n.e)
}

// Name returns the label the node was created with.
func (g *Graph) Name(n Node) string {
	if !g.Alive(n) {
		return ""
	}
	return g.links.Get(n.e).Name
}

// Parent returns n's parent. ok is false for the root and removed nodes.
func (g *Graph) Parent(n Node) (Node, bool) {
	if !g.Alive(n) {
		return Node{}, false
	}
	h := g.links.Get(n.e)
	if h.Root {
		return Node{}, false
	}
	return Node{h.Parent}, true
}

// Remove deletes n and all of its descendants. Removing the root or an
// already removed node is a no-op.
func (g *Graph) Remove(n Node) {
	if !g.Alive(n) || n == g.root {
		return
	}
	doomed := map[ecs.Entity]struct{}{n.e: {}}
	// Entities cannot be removed mid-query, so gather the subtree first.
	for grew := true; grew; {
		grew = false
		query := g.filter.Query()
		for query.Next() {
			h := query.Get()
			if h.Root {
				continue
			}
			e := query.Entity()
			if _, seen := doomed[e]; seen {
				continue
			}
			if _, under := doomed[h.Parent]; under {
				doomed[e] = struct{}{}
				grew = true
			}
		}
	}
	for e := range doomed {
		g.world.RemoveEntity(e)
	}
}

// World returns the node-to-world matrix.
func (g *Graph) World(n Node) mgl64.Mat4 {
	m := mgl64.Ident4()
	for cur, ok := n, g.Alive(n); ok; cur, ok = g.Parent(cur) {
		m = g.transforms.Get(cur.e).Local().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (g *Graph) WorldPosition(n Node) mgl64.Vec3 {
	return g.World(n).Col(3).Vec3()
}

// Visible reports whether n and every ancestor are shown.
func (g *Graph) Visible(n Node) bool {
	if !g.Alive(n) {
		return false
	}
	for cur, ok := n, true; ok; cur, ok = g.Parent(cur) {
		if !g.transforms.Get(cur.e).Visible {
			return false
		}
	}
	return true
}

// Len is the number of live nodes including the root.
func (g *Graph) Len() int {
	n := 0
	query := g.filter.Query()
	for query.Next() {
		n++
	}
	return n
}
