package parquet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/klahnakoski/mo-parquet/format"
)

// Repetition is a schema node's repetition kind: REQUIRED, OPTIONAL or
// REPEATED (spec.md §3).
type Repetition = format.FieldRepetitionType

const (
	Required = format.Required
	Optional = format.Optional
	Repeated = format.Repeated
)

// Node is one position in the schema tree. The root is always REQUIRED and
// named "." (spec.md §3 invariant). An interior node has children and no
// leaf type; a leaf has a leaf type and no children.
//
// A field declared with more than one repetition in sequence (outer→inner,
// e.g. REPEATED of OPTIONAL of T to encode "list of nullable") is stored as
// a chain of nodes: the node reachable by the field's simple name carries
// the outer repetition and a synthetic name of "."; each subsequent layer
// does the same until the innermost layer, which carries the real full
// path and the leaf type. Lookup, level computation and metadata export
// all walk straight through this chain; only the map key used by the
// parent to reach the chain's head is the user-facing simple name.
type Node struct {
	name       string
	repetition Repetition
	leafType   *LeafType
	children   map[string]*Node
	order      []string // insertion order of map keys, for stable iteration
	locked     bool
}

// NewSchema creates an empty, unlocked schema tree with only the REQUIRED
// root.
func NewSchema() *Node {
	return &Node{name: ".", repetition: Required, children: map[string]*Node{}}
}

// IsLeaf reports whether n has a physical type (and therefore no
// children): spec.md §3's "a leaf has physical_type != NULL" invariant.
func (n *Node) IsLeaf() bool { return n.leafType != nil }

// Name returns the node's own schema-element name: the full dotted path
// for the root, for group (interior) nodes, and for leaves; "." for a
// synthetic intermediate layer of a multi-level repetition chain.
func (n *Node) Name() string { return n.name }

// Repetition returns the node's repetition kind.
func (n *Node) Repetition() Repetition { return n.repetition }

// LeafType returns the node's physical/logical type, or nil for an
// interior node.
func (n *Node) LeafType() *LeafType { return n.leafType }

// Locked reports whether this node refuses new children (spec.md §3
// lifecycle).
func (n *Node) Locked() bool { return n.locked }

// Lock freezes this node and every descendant against further growth.
func (n *Node) Lock() {
	n.locked = true
	for _, c := range n.children {
		c.Lock()
	}
}

func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	return strings.Split(path, ".")
}

func joinPath(base, name string) string {
	if base == "" || base == "." {
		return name
	}
	return base + "." + name
}

// skipSynthetic advances through a chain of "." continuation children,
// returning the first node that does not itself have one: the real
// schema-visible node at this position (spec.md §4.1 lookup: "transparently
// traversing synthetic '.' children").
func skipSynthetic(n *Node) *Node {
	for {
		next, ok := n.children["."]
		if !ok {
			return n
		}
		n = next
	}
}

// Lookup walks dot-delimited simple names from n, transparently skipping
// synthetic continuation layers, and returns the terminal node.
func (n *Node) Lookup(path string) (*Node, bool) {
	cur := skipSynthetic(n)
	for _, seg := range splitPath(path) {
		child, ok := cur.children[seg]
		if !ok {
			return nil, false
		}
		cur = skipSynthetic(child)
	}
	return cur, true
}

// pathChain returns every node visited from n to path's terminal,
// inclusive, expanding synthetic continuation layers — the basis for
// MaxDefinitionLevel and MaxRepetitionLevel (spec.md §3).
func (n *Node) pathChain(path string) ([]*Node, error) {
	cur := n
	chain := []*Node{}
	for _, next := range syntheticChain(cur) {
		chain = append(chain, next)
		cur = next
	}
	for _, seg := range splitPath(path) {
		child, ok := cur.children[seg]
		if !ok {
			return nil, fmt.Errorf("%s: no such field under %s", seg, cur.name)
		}
		chain = append(chain, child)
		cur = child
		for _, next := range syntheticChain(cur) {
			chain = append(chain, next)
			cur = next
		}
	}
	return chain, nil
}

// syntheticChain returns the run of "." continuation nodes reachable from
// n, not including n itself.
func syntheticChain(n *Node) []*Node {
	var out []*Node
	for {
		next, ok := n.children["."]
		if !ok {
			return out
		}
		out = append(out, next)
		n = next
	}
}

// MaxDefinitionLevel is the count of nodes on path (excluding the node n
// itself) whose repetition is not REQUIRED (spec.md §3). Returns 0 if the
// path does not resolve.
func (n *Node) MaxDefinitionLevel(path string) int {
	chain, err := n.pathChain(path)
	if err != nil {
		return 0
	}
	count := 0
	for _, node := range chain {
		if node.repetition != Required {
			count++
		}
	}
	return count
}

// MaxRepetitionLevel is the count of nodes on path (excluding the node n
// itself) whose repetition is REPEATED (spec.md §3). Returns 0 if the path
// does not resolve.
func (n *Node) MaxRepetitionLevel(path string) int {
	chain, err := n.pathChain(path)
	if err != nil {
		return 0
	}
	count := 0
	for _, node := range chain {
		if node.repetition == Repeated {
			count++
		}
	}
	return count
}

// Leaves returns the dotted full paths of every leaf reachable from n, in
// schema declaration order.
func (n *Node) Leaves() []string {
	var out []string
	n.walkLeaves(&out)
	return out
}

func (n *Node) walkLeaves(out *[]string) {
	for _, key := range n.order {
		terminal := skipSynthetic(n.children[key])
		if terminal.IsLeaf() {
			*out = append(*out, terminal.name)
		} else {
			terminal.walkLeaves(out)
		}
	}
}

// Add declares a new leaf field at the dot-delimited path. repetitions
// expresses the field's own repetition as a sequence, outer to inner;
// every entry but the last introduces a synthetic "." layer, encoding
// "REPEATED of OPTIONAL of T" style list-of-nullable fields in one call
// (spec.md §4.1, §9's multi-level-repetition case). It never expresses an
// interior group's own repetition — an interior segment not already
// declared via AddGroup is auto-created OPTIONAL, matching the original's
// default for an undeclared intermediate path; a REQUIRED or REPEATED
// group (e.g. spec.md §8's "Name REPEATED group") must be declared with
// its own AddGroup call before any field beneath it is Added, exactly as
// original_source/tests/test_columns.py:49-57 declares "Name" and
// "Name.Language" ahead of their children. Add fails if the terminal path
// already exists.
func (n *Node) Add(path string, repetitions []Repetition, leaf LeafType) (*Node, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, errors.New("schema: path must not be empty")
	}

	cur := n
	accum := n.name
	for _, seg := range segs[:len(segs)-1] {
		accum = joinPath(accum, seg)
		child, ok := cur.children[seg]
		if !ok {
			child = &Node{name: accum, repetition: Optional, children: map[string]*Node{}, locked: cur.locked}
			cur.children[seg] = child
			cur.order = append(cur.order, seg)
		} else if child.IsLeaf() {
			return nil, errors.Errorf("%s: cannot extend through leaf field %s", path, accum)
		}
		cur = child
	}

	last := segs[len(segs)-1]
	if _, exists := cur.children[last]; exists {
		return nil, &RedefinitionError{Path: path}
	}
	if len(repetitions) == 0 {
		repetitions = []Repetition{Optional}
	}

	head := cur.addChain(last, path, repetitions, leaf)
	cur.order = append(cur.order, last)
	return head, nil
}

func (n *Node) addChain(simpleName, fullPath string, repetitions []Repetition, leaf LeafType) *Node {
	head := &Node{children: map[string]*Node{}, locked: n.locked}
	n.children[simpleName] = head

	cur := head
	for _, rt := range repetitions[:len(repetitions)-1] {
		cur.name = "."
		cur.repetition = rt
		next := &Node{children: map[string]*Node{}, locked: n.locked}
		cur.children["."] = next
		cur.order = []string{"."}
		cur = next
	}

	cur.name = fullPath
	cur.repetition = repetitions[len(repetitions)-1]
	lt := leaf
	cur.leafType = &lt
	return head
}

// AddGroup declares a new interior group node at the dot-delimited path
// with its own repetition (spec.md §4.1's add(path, repetition, type) for
// a group type, mirrored by original_source/tests/test_columns.py's
// schema.add("Name", REPEATED, object) / schema.add("Name.Language",
// REPEATED, object) calls). Call it before Add-ing any field beneath a
// group that needs to be REQUIRED or REPEATED rather than the OPTIONAL
// default Add falls back to for an undeclared intermediate segment.
// AddGroup fails if the path already exists.
func (n *Node) AddGroup(path string, repetition Repetition) (*Node, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, errors.New("schema: path must not be empty")
	}

	cur := n
	accum := n.name
	for _, seg := range segs[:len(segs)-1] {
		accum = joinPath(accum, seg)
		child, ok := cur.children[seg]
		if !ok {
			child = &Node{name: accum, repetition: Optional, children: map[string]*Node{}, locked: cur.locked}
			cur.children[seg] = child
			cur.order = append(cur.order, seg)
		} else if child.IsLeaf() {
			return nil, errors.Errorf("%s: cannot extend through leaf field %s", path, accum)
		}
		cur = child
	}

	last := segs[len(segs)-1]
	if _, exists := cur.children[last]; exists {
		return nil, &RedefinitionError{Path: path}
	}
	return cur.addChild(last, path, repetition), nil
}

// addChild inserts a bare interior child with no leaf type: AddGroup's
// implementation, and the shredder's auto-growth path for a newly
// discovered OBJECT or NESTED container field whose element type isn't
// known until its children are themselves seen
// (original_source/mo_parquet/__init__.py's schema.add(..., REPEATED/OPTIONAL)
// for a map/list-valued key).
func (n *Node) addChild(simpleName, fullPath string, repetition Repetition) *Node {
	child := &Node{name: fullPath, repetition: repetition, children: map[string]*Node{}, locked: n.locked}
	n.children[simpleName] = child
	n.order = append(n.order, simpleName)
	return child
}

// widen replaces a leaf's type in place: the shredder's equivalent of the
// Python original's merge_schema_element, used when an unlocked schema sees
// a value of a different kind than the one it first inferred.
func (n *Node) widen(lt LeafType) { n.leafType = &lt }

// knownRootNames are the root element names FromParquetMetadata tolerates
// without a warning, per original_source/mo_parquet/schema.py.
var knownRootNames = map[string]bool{
	".": true, "schema": true, "spark_schema": true, "hive_schema": true, "root": true,
}

// ToParquetMetadata flattens the schema tree into a pre-order Parquet
// thrift SchemaElement list: the root first (named "."), then each
// subtree, children sorted by their simple name within a level to
// stabilize output (spec.md §4.1, §6).
func (n *Node) ToParquetMetadata() []format.SchemaElement {
	root := n.element()
	count := int32(len(n.order))
	root.NumChildren = &count
	return append([]format.SchemaElement{root}, n.exportChildren()...)
}

func (n *Node) exportChildren() []format.SchemaElement {
	keys := append([]string(nil), n.order...)
	sort.Strings(keys)
	var out []format.SchemaElement
	for _, k := range keys {
		out = append(out, n.children[k].export()...)
	}
	return out
}

func (n *Node) export() []format.SchemaElement {
	if n.IsLeaf() {
		return []format.SchemaElement{n.element()}
	}
	children := n.exportChildren()
	elem := n.element()
	count := int32(len(n.order))
	elem.NumChildren = &count
	return append([]format.SchemaElement{elem}, children...)
}

func (n *Node) element() format.SchemaElement {
	rep := n.repetition
	e := format.SchemaElement{Name: n.name, Repetition: &rep}
	if n.IsLeaf() {
		t := n.leafType.Physical
		e.Type = &t
		if n.leafType.Logical != nil {
			lt := *n.leafType.Logical
			e.ConvertedType = &lt
		}
		if n.leafType.ByteWidth > 0 {
			w := int32(n.leafType.ByteWidth)
			e.TypeLength = &w
		}
	}
	return e
}

// FromParquetMetadata reconstructs a schema tree from a pre-order
// flattened Parquet thrift SchemaElement list (the inverse of
// ToParquetMetadata). The first element is always treated as the root,
// regardless of its own name; an unrecognized root name is logged as a
// warning rather than rejected (spec.md §4.1).
func FromParquetMetadata(elements []format.SchemaElement) (*Node, error) {
	if len(elements) == 0 {
		return nil, newLoaderError(0, "empty schema element list")
	}
	idx := 0
	root, err := parseSchemaElement(elements, &idx, true)
	if err != nil {
		return nil, err
	}
	if idx != len(elements) {
		return nil, newLoaderError(idx, "trailing schema elements after root subtree")
	}
	return root, nil
}

func parseSchemaElement(elements []format.SchemaElement, idx *int, isRoot bool) (*Node, error) {
	if *idx >= len(elements) {
		return nil, newLoaderError(*idx, "unexpected end of schema element list")
	}
	e := elements[*idx]
	*idx++

	n := &Node{name: e.Name, children: map[string]*Node{}}
	if e.Repetition != nil {
		n.repetition = *e.Repetition
	} else {
		n.repetition = Required
	}

	if isRoot {
		if !knownRootNames[e.Name] {
			warn("first schema element has an unrecognized root name, treating it as root anyway", "name", e.Name)
		}
		n.name = "."
		n.repetition = Required
	}

	if e.IsLeaf() {
		lt := LeafType{Physical: *e.Type}
		if e.ConvertedType != nil {
			c := *e.ConvertedType
			lt.Logical = &c
		}
		if e.TypeLength != nil {
			lt.ByteWidth = int(*e.TypeLength)
		}
		n.leafType = &lt
		return n, nil
	}

	numChildren := 0
	if e.NumChildren != nil {
		numChildren = int(*e.NumChildren)
	}
	for i := 0; i < numChildren; i++ {
		child, err := parseSchemaElement(elements, idx, false)
		if err != nil {
			return nil, err
		}
		key := childKey(child)
		n.children[key] = child
		n.order = append(n.order, key)
	}
	return n, nil
}

// childKey recovers the simple map key a child should be stored under: "."
// for a synthetic continuation layer, otherwise the last segment of its
// own full dotted name.
func childKey(n *Node) string {
	if n.name == "." {
		return "."
	}
	segs := splitPath(n.name)
	if len(segs) == 0 {
		return n.name
	}
	return segs[len(segs)-1]
}
