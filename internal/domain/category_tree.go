package domain

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/medical_shop/internal/models"
)

var (
	ErrCycle         = errors.New("category parent would create a cycle")
	ErrUnknownParent = errors.New("parent category not found")
)

type Node struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id"`
	Children []*Node    `json:"children"`
}

// CategoryTree indexes categories by id; edges are the parent pointers.
type CategoryTree struct {
	nodes map[uuid.UUID]models.Category
	order []uuid.UUID
}

func NewCategoryTree(cats []models.Category) *CategoryTree {
	t := &CategoryTree{nodes: make(map[uuid.UUID]models.Category, len(cats)), order: make([]uuid.UUID, 0, len(cats))}
	for _, c := range cats {
		if _, dup := t.nodes[c.ID]; !dup {
			t.order = append(t.order, c.ID)
		}
		t.nodes[c.ID] = c
	}
	return t
}

func (t *CategoryTree) Has(id uuid.UUID) bool {
	_, ok := t.nodes[id]
	return ok
}

// ValidateParent checks that making parent the parent of id keeps the tree acyclic.
func (t *CategoryTree) ValidateParent(id uuid.UUID, parent *uuid.UUID) error {
	if parent == nil {
		return nil
	}
	if *parent == id {
		return ErrCycle
	}
	if !t.Has(*parent) {
		return ErrUnknownParent
	}

	visited := make(map[uuid.UUID]struct{}, len(t.nodes))
	cur := *parent
	for steps := 0; steps <= len(t.nodes); steps++ {
		if cur == id {
			return ErrCycle
		}
		if _, seen := visited[cur]; seen {
			return ErrCycle
		}
		visited[cur] = struct{}{}

		n, ok := t.nodes[cur]
		if !ok || n.ParentID == nil {
			return nil
		}
		cur = *n.ParentID
	}
	return ErrCycle
}

// reachesRoot reports whether walking up from id ends at a root or a missing parent.
func (t *CategoryTree) reachesRoot(id uuid.UUID) bool {
	visited := make(map[uuid.UUID]struct{})
	cur := id
	for {
		if _, seen := visited[cur]; seen {
			return false
		}
		visited[cur] = struct{}{}
		n, ok := t.nodes[cur]
		if !ok || n.ParentID == nil {
			return true
		}
		cur = *n.ParentID
	}
}

// Roots returns the nested tree. Categories with a missing parent, or caught in
// a stored cycle, are returned as roots.
func (t *CategoryTree) Roots() []*Node {
	built := make(map[uuid.UUID]*Node, len(t.nodes))
	for _, id := range t.order {
		c := t.nodes[id]
		built[id] = &Node{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID, Children: []*Node{}}
	}

	roots := make([]*Node, 0)
	for _, id := range t.order {
		n := built[id]
		c := t.nodes[id]
		if c.ParentID != nil && t.reachesRoot(id) {
			if p, ok := built[*c.ParentID]; ok {
				p.Children = append(p.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Descendants returns id and every category below it.
func (t *CategoryTree) Descendants(id uuid.UUID) []uuid.UUID {
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, cid := range t.order {
		if p := t.nodes[cid].ParentID; p != nil {
			children[*p] = append(children[*p], cid)
		}
	}

	out := []uuid.UUID{id}
	seen := map[uuid.UUID]struct{}{id: {}}
	for i := 0; i < len(out); i++ {
		for _, c := range children[out[i]] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
