package parquet

// Assemble runs the Dremel record-assembly algorithm (spec.md §4.3), the
// inverse of Shred: it walks the schema tree once per row, consuming each
// leaf's (values, reps, defs) triple through a cursor, and rebuilds the
// nested record structure. A field whose assembled value comes back null
// is omitted from its parent map entirely, matching the convention the
// canonical fixture's input records use (a missing key, not an explicit
// null) — an empty list is the analogous stand-in for an absent REPEATED
// field, per the documented invariant 4 coercion.
func Assemble(t *Table) ([]any, error) {
	a := newAssembler(t)

	rows := make([]any, 0, t.NumRows)
	for i := 0; i < t.NumRows; i++ {
		row, err := a.assembleObject(t.Schema)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// leafCursor tracks one leaf's position through its own rep/def arrays
// (pos) and, separately, through its value array (vpos) — the two only
// advance together when a present value is read (spec.md §4.3 state).
type leafCursor struct {
	values []any
	reps   []int
	defs   []int
	maxDef int
	pos    int
	vpos   int
}

// assembler holds the per-leaf cursors plus each schema node's own
// contribution to definition and repetition level, computed once up
// front so the walk never needs to re-derive a node's level from its
// dotted path.
type assembler struct {
	cursors map[string]*leafCursor
	ownDef  map[*Node]int
	ownRep  map[*Node]int
}

func newAssembler(t *Table) *assembler {
	a := &assembler{
		cursors: make(map[string]*leafCursor, len(t.Values)),
		ownDef:  map[*Node]int{},
		ownRep:  map[*Node]int{},
	}
	for _, leaf := range t.Schema.Leaves() {
		a.cursors[leaf] = &leafCursor{
			values: t.Values[leaf],
			reps:   t.Reps[leaf],
			defs:   t.Defs[leaf],
			maxDef: t.Schema.MaxDefinitionLevel(leaf),
		}
	}
	a.computeLevels(t.Schema, 0, 0)
	return a
}

// computeLevels mirrors the shredder's own running def/rep computation
// (shred.go's visit), but over the static schema tree rather than over
// incoming record values: each node's own contribution is its parent's
// plus one, if the node itself is non-REQUIRED (definition) or REPEATED
// (repetition).
func (a *assembler) computeLevels(node *Node, parentDef, parentRep int) {
	def := parentDef
	if node.Repetition() != Required {
		def++
	}
	rep := parentRep
	if node.Repetition() == Repeated {
		rep++
	}
	a.ownDef[node] = def
	a.ownRep[node] = rep
	for _, key := range node.order {
		a.computeLevels(node.children[key], def, rep)
	}
}

// representative picks the leaf used to decide whether a group node (or a
// synthetic continuation layer) is present for the row currently being
// assembled: the first leaf beneath node in schema declaration order,
// matching the order emitPlaceholders walks during shredding — any
// leaf beneath a node sees the same presence boundary for that node, so a
// fixed, deterministic choice is all that's needed.
func representative(node *Node) string {
	leaves := nodeLeaves(node)
	if len(leaves) == 0 {
		return node.name
	}
	return leaves[0]
}

// assembleObject assembles one instance of node's declared children: the
// top-level row, or one element of a REPEATED group.
func (a *assembler) assembleObject(node *Node) (map[string]any, error) {
	out := make(map[string]any, len(node.order))
	for _, key := range node.order {
		val, err := a.assembleField(node.children[key])
		if err != nil {
			return nil, err
		}
		if val == nil {
			continue
		}
		out[key] = val
	}
	return out, nil
}

// assembleField dispatches on node's own repetition kind — the
// assemble_required / assemble_optional / assemble_repeated state
// machine of spec.md §4.3.
func (a *assembler) assembleField(node *Node) (any, error) {
	if node.Repetition() == Repeated {
		return a.assembleRepeated(node)
	}
	return a.assembleSingle(node)
}

// assembleSingle assembles a REQUIRED or OPTIONAL field: a leaf value, a
// transparent pass-through into a synthetic "." continuation, or one
// group instance.
func (a *assembler) assembleSingle(node *Node) (any, error) {
	if node.IsLeaf() {
		return a.consumeLeaf(node)
	}

	rep := representative(node)
	c, ok := a.cursors[rep]
	if !ok {
		return nil, newAssemblyError(rep, 0, "no cursor for representative leaf")
	}
	if c.pos >= len(c.defs) {
		return nil, newAssemblyError(rep, c.pos, "cursor exhausted")
	}
	if c.defs[c.pos] < a.ownDef[node] {
		a.consumeAbsent(node)
		return nil, nil
	}

	if isSynthetic(node) {
		return a.assembleField(node.children["."])
	}
	return a.assembleObject(node)
}

// assembleRepeated assembles a REPEATED field: an empty slice if the
// field is absent for this row (spec.md's documented "empty list ≡
// absent" coercion), otherwise every element up to the next rep-level
// boundary shallower than node's own.
func (a *assembler) assembleRepeated(node *Node) (any, error) {
	rep := representative(node)
	c, ok := a.cursors[rep]
	if !ok {
		return nil, newAssemblyError(rep, 0, "no cursor for representative leaf")
	}
	if c.pos >= len(c.defs) {
		return nil, newAssemblyError(rep, c.pos, "cursor exhausted")
	}
	if c.defs[c.pos] < a.ownDef[node] {
		a.consumeAbsent(node)
		return []any{}, nil
	}

	out := []any{}
	for {
		elem, err := a.assembleElement(node)
		if err != nil {
			return nil, err
		}
		out = append(out, elem)

		if c.pos >= len(c.defs) || c.reps[c.pos] < a.ownRep[node] {
			break
		}
	}
	return out, nil
}

// assembleElement assembles one already-open instance of a REPEATED
// node: no presence check happens here (the caller already established
// this instance exists), only the dispatch on shape.
func (a *assembler) assembleElement(node *Node) (any, error) {
	if isSynthetic(node) {
		return a.assembleField(node.children["."])
	}
	if node.IsLeaf() {
		return a.consumeLeaf(node)
	}
	return a.assembleObject(node)
}

// consumeLeaf reads the next (value, rep, def) triple from node's leaf
// cursor, returning the value if present or nil if this position is an
// absent-placeholder.
func (a *assembler) consumeLeaf(node *Node) (any, error) {
	c, ok := a.cursors[node.name]
	if !ok {
		return nil, newAssemblyError(node.name, 0, "no cursor for leaf")
	}
	if c.pos >= len(c.defs) {
		return nil, newAssemblyError(node.name, c.pos, "cursor exhausted")
	}

	def := c.defs[c.pos]
	var val any
	if def == c.maxDef {
		if c.vpos >= len(c.values) {
			return nil, newAssemblyError(node.name, c.pos, "value cursor exhausted")
		}
		val = c.values[c.vpos]
		c.vpos++
	}
	c.pos++
	return val, nil
}

// consumeAbsent advances every leaf beneath node by exactly one
// placeholder entry — the mirror of emitPlaceholders on the shredding
// side, which appends exactly one (rep, def) pair to every such leaf
// when node itself is absent.
func (a *assembler) consumeAbsent(node *Node) {
	for _, leaf := range nodeLeaves(node) {
		if c, ok := a.cursors[leaf]; ok {
			c.pos++
		}
	}
}

// isSynthetic reports whether node is purely a continuation layer of a
// multi-level repetition chain: its only child is keyed ".".
func isSynthetic(node *Node) bool {
	return len(node.order) == 1 && node.order[0] == "."
}
