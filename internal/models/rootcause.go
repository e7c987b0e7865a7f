package models

import (
	"fmt"
	"iter"
	"strings"

	"mcx-exporter/internal/common"
)

// RootTreeSentinel is the ParentTreeId value marking a node with no parent.
const RootTreeSentinel = "#"

// RootCauseValue is one taxonomy node as it appears on the wire. TreeId is a
// vendor-assigned string, unique within an item's tree but not necessarily
// numeric or sequential.
type RootCauseValue struct {
	CaseItemID      int    `json:"CaseItemId"`
	CaseRootCauseID int    `json:"CaseRootCauseId"`
	RootCauseName   string `json:"RootCauseName"`
	ParentTreeID    string `json:"ParentTreeId"`
	TreeID          string `json:"TreeId"`
}

// RootCauseTree is a forest of taxonomy nodes. Nodes live in a flat arena in
// input order; parent relationships are arena indices, which keeps the
// structure pointer-free and makes leaf/root computation a single pass.
//
// Vendor data is assumed acyclic; traversal still tracks visited indices so
// a malformed parent chain cannot loop.
type RootCauseTree struct {
	nodes      []RootCauseValue
	index      map[string]int // TreeID -> arena index
	parents    []int          // arena index -> parent index, -1 for roots
	childCount []int
}

// NewRootCauseTree builds the forest from an unordered node sequence. A node
// referencing an absent ParentTreeId is a data integrity error and fails
// construction.
func NewRootCauseTree(values []RootCauseValue) (*RootCauseTree, error) {
	t := &RootCauseTree{
		nodes:      values,
		index:      make(map[string]int, len(values)),
		parents:    make([]int, len(values)),
		childCount: make([]int, len(values)),
	}

	for i, v := range values {
		t.index[v.TreeID] = i
	}

	for i, v := range values {
		if v.ParentTreeID == RootTreeSentinel {
			t.parents[i] = -1
			continue
		}
		parent, ok := t.index[v.ParentTreeID]
		if !ok {
			return nil, common.NewReferenceError("root_cause_parent_missing",
				fmt.Sprintf("root cause node %q references unknown parent %q", v.TreeID, v.ParentTreeID)).
				WithContext("tree_id", v.TreeID).
				WithContext("parent_tree_id", v.ParentTreeID)
		}
		t.parents[i] = parent
		t.childCount[parent]++
	}

	return t, nil
}

func (t *RootCauseTree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given tree id.
func (t *RootCauseTree) Node(treeID string) (RootCauseValue, bool) {
	i, ok := t.index[treeID]
	if !ok {
		return RootCauseValue{}, false
	}
	return t.nodes[i], true
}

// IsLeaf reports whether the node with the given tree id is a leaf: a node
// is a leaf iff no other node in the same tree references it as parent.
func (t *RootCauseTree) IsLeaf(treeID string) bool {
	i, ok := t.index[treeID]
	if !ok {
		return false
	}
	return t.childCount[i] == 0
}

// IsRoot reports whether the node with the given tree id has no parent.
func (t *RootCauseTree) IsRoot(treeID string) bool {
	i, ok := t.index[treeID]
	if !ok {
		return false
	}
	return t.parents[i] == -1
}

// RenderTree enumerates every root's subtree in pre-order, one indented line
// per node, two spaces per depth level. Sibling order is input order. The
// sequence is lazy and restartable; it is for human-readable display only.
func (t *RootCauseTree) RenderTree() iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make([]bool, len(t.nodes))
		type frame struct {
			idx   int
			depth int
		}
		var stack []frame

		// Roots pushed in reverse so input order pops first.
		for i := len(t.nodes) - 1; i >= 0; i-- {
			if t.parents[i] == -1 {
				stack = append(stack, frame{i, 0})
			}
		}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[f.idx] {
				continue
			}
			visited[f.idx] = true

			if !yield(strings.Repeat("  ", f.depth) + t.nodes[f.idx].RootCauseName) {
				return
			}

			for i := len(t.nodes) - 1; i >= 0; i-- {
				if t.parents[i] == f.idx && !visited[i] {
					stack = append(stack, frame{i, f.depth + 1})
				}
			}
		}
	}
}

// Path returns the root-to-node name sequence for the given tree id, or nil
// when the id is unknown.
func (t *RootCauseTree) Path(treeID string) []string {
	i, ok := t.index[treeID]
	if !ok {
		return nil
	}

	visited := make(map[int]bool)
	var names []string
	for i >= 0 && !visited[i] {
		visited[i] = true
		names = append(names, t.nodes[i].RootCauseName)
		i = t.parents[i]
	}

	for left, right := 0, len(names)-1; left < right; left, right = left+1, right-1 {
		names[left], names[right] = names[right], names[left]
	}
	return names
}

// RenderAnswers renders "root > … > leaf" for each answer that resolves to a
// leaf node, joined with ", ". Answers resolving to non-leaf nodes are
// incomplete taxonomy selections and are not rendered.
func (t *RootCauseTree) RenderAnswers(answers []RootCauseAnswer) string {
	var paths []string
	for _, a := range answers {
		if !t.IsLeaf(a.TreeID) {
			continue
		}
		paths = append(paths, strings.Join(t.Path(a.TreeID), " > "))
	}
	return strings.Join(paths, ", ")
}
