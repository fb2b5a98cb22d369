package parquet

import (
	"fmt"
	"sort"

	"github.com/klahnakoski/mo-parquet/format"
)

// Shred runs the Dremel record-shredding algorithm (spec.md §4.2) over
// records against schema, producing one values/reps/defs triple per leaf.
// schema may be nil, in which case an empty unlocked schema is grown
// entirely from the records themselves — original_source/mo_parquet's
// rows_to_columns default behavior when called without a schema.
func Shred(records []any, schema *Node) (*Table, error) {
	if schema == nil {
		schema = NewSchema()
	}

	st := &shredState{schema: schema, values: map[string][]any{}, reps: map[string][]int{}, defs: map[string][]int{}}
	for _, leaf := range schema.Leaves() {
		st.values[leaf] = []any{}
		st.reps[leaf] = []int{}
		st.defs[leaf] = []int{}
	}

	for row, record := range records {
		counters := []int{row}
		if err := st.visit(schema, ".", counters, 0, record); err != nil {
			return nil, err
		}
	}

	return &Table{Values: st.values, Reps: st.reps, Defs: st.defs, NumRows: len(records), Schema: schema}, nil
}

// shredState accumulates the columnar arrays as records are walked. The
// schema it holds may grow (new leaves, new interior nodes) as unlocked
// fields are discovered.
type shredState struct {
	schema *Node
	values map[string][]any
	reps   map[string][]int
	defs   map[string][]int
}

// repLevel is the repetition level a value at counters contributes: the
// largest index (other than the row index itself) with a nonzero counter,
// or 0 if none (spec.md §3 — get_rep_level in the Python original).
func repLevel(counters []int) int {
	for i := len(counters) - 1; i >= 1; i-- {
		if counters[i] > 0 {
			return i
		}
	}
	return 0
}

// visit processes one schema position for one incoming value. incoming is
// the definition level contributed by every strict ancestor already
// crossed; node's own contribution (1 if its repetition is not REQUIRED) is
// folded in exactly once, at the point the node itself is found present —
// never twice, even though a REPEATED leaf or a REPEATED group plays both
// the role of "the list" and "the thing inside the list" on the same node.
func (st *shredState) visit(node *Node, path string, counters []int, incoming int, value any) error {
	row := counters[0]

	if value == nil {
		if node.Repetition() == Required {
			return newStructuralError(row, path, "required field is null")
		}
		st.emitPlaceholders(node, counters, incoming)
		return nil
	}

	if node.Repetition() == Repeated {
		list, ok := value.([]any)
		if !ok {
			// A bare scalar or object arriving at a REPEATED position is
			// coerced into a singleton list (spec.md §4.2 edge cases).
			list = []any{value}
		}
		return st.visitList(node, path, counters, incoming, list, row)
	}

	if _, ok := value.([]any); ok {
		return newStructuralError(row, path, "non-repeated field received a list")
	}

	if m, ok := value.(map[string]any); ok {
		if node.IsLeaf() {
			return newStructuralError(row, path, "expected a primitive value, got an object")
		}
		self := incoming
		if node.Repetition() != Required {
			self++
		}
		return st.visitObjectChildren(node, path, counters, self, m, row)
	}

	if !node.IsLeaf() {
		return newStructuralError(row, path, "expected an object, got a primitive")
	}
	self := incoming
	if node.Repetition() != Required {
		self++
	}
	return st.recordLeaf(node, path, counters, self, value, row)
}

// visitList handles a NESTED dispatch: node.Repetition() is already known
// to be Repeated. An empty list places a single null for every leaf
// beneath node, at the level already reached (spec.md §4.2).
func (st *shredState) visitList(node *Node, path string, counters []int, incoming int, list []any, row int) error {
	if len(list) == 0 {
		st.emitPlaceholders(node, counters, incoming)
		return nil
	}

	self := incoming + 1
	for idx, elem := range list {
		elemCounters := append(append([]int{}, counters...), idx)
		if err := st.processElement(node, path, elemCounters, self, elem, row); err != nil {
			return err
		}
	}
	return nil
}

// processElement handles one already-crossed REPEATED instance: self is the
// definition level node's own repeated-ness already contributed, used
// directly as the incoming level for whatever is inside — a synthetic
// inner layer (list of nullable), a scalar (node doubles as its own leaf,
// e.g. a plain REPEATED int field), or an object (node doubles as its own
// group schema, e.g. a REPEATED group field's children).
func (st *shredState) processElement(node *Node, path string, counters []int, self int, elem any, row int) error {
	if inner, ok := node.children["."]; ok {
		return st.visit(inner, path, counters, self, elem)
	}

	if node.IsLeaf() {
		if elem == nil {
			return newStructuralError(row, path, "repeated field element is null; declare REPEATED of OPTIONAL for nullable elements")
		}
		if _, ok := elem.([]any); ok {
			return newStructuralError(row, path, "repeated leaf field received a nested list element")
		}
		if _, ok := elem.(map[string]any); ok {
			return newStructuralError(row, path, "expected a primitive element, got an object")
		}
		return st.recordLeaf(node, path, counters, self, elem, row)
	}

	if elem == nil {
		return newStructuralError(row, path, "repeated group element is null")
	}
	m, ok := elem.(map[string]any)
	if !ok {
		return newStructuralError(row, path, "expected an object for a repeated group element")
	}
	return st.visitObjectChildren(node, path, counters, self, m, row)
}

// visitObjectChildren walks node's declared children against m, then grows
// the schema for any extra key m carries that node doesn't declare —
// unless node is locked, in which case that is a SchemaClosedError
// (spec.md §4.1 lifecycle, §4.2 OBJECT dispatch).
func (st *shredState) visitObjectChildren(node *Node, path string, counters []int, incoming int, m map[string]any, row int) error {
	declared := make(map[string]bool, len(node.order))
	for _, key := range append([]string(nil), node.order...) {
		declared[key] = true
		child := node.children[key]
		childPath := joinPath(path, key)
		if err := st.visit(child, childPath, counters, incoming, m[key]); err != nil {
			return err
		}
	}

	var extra []string
	for k := range m {
		if !declared[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)

	for _, key := range extra {
		childPath := joinPath(path, key)
		if node.Locked() {
			return &SchemaClosedError{Row: row, Path: childPath}
		}
		child, err := st.growField(node, childPath, key, m[key], row)
		if err != nil {
			return err
		}
		if err := st.visit(child, childPath, counters, incoming, m[key]); err != nil {
			return err
		}
	}
	return nil
}

// growField declares a schema node for a key seen for the first time,
// inferring its shape from a sample value (original_source/mo_parquet's
// _value_to_column OBJECT-branch auto-add). New leaves get their
// reps/defs arrays back-filled with one neutral (rep 0, def 0) entry per
// row already processed, so every leaf's arrays stay aligned in length to
// the row cursor (spec.md §4.2 edge cases).
func (st *shredState) growField(parent *Node, fullPath, key string, sample any, row int) (*Node, error) {
	switch v := sample.(type) {
	case []any:
		first := firstNonNil(v)
		switch fv := first.(type) {
		case nil:
			node, err := st.schema.Add(fullPath, []Repetition{Repeated}, LeafType{Physical: format.ByteArray, Logical: &utf8})
			if err != nil {
				return nil, err
			}
			st.registerLeaf(fullPath, row)
			return node, nil
		case map[string]any:
			_ = fv
			return parent.addChild(key, fullPath, Repeated), nil
		case []any:
			return nil, newStructuralError(row, fullPath, "cannot auto-grow schema for a nested list of lists")
		default:
			node, err := st.schema.Add(fullPath, []Repetition{Repeated}, typeOf(fv))
			if err != nil {
				return nil, err
			}
			st.registerLeaf(fullPath, row)
			return node, nil
		}
	case map[string]any:
		return parent.addChild(key, fullPath, Optional), nil
	case nil:
		node, err := st.schema.Add(fullPath, []Repetition{Optional}, LeafType{Physical: format.ByteArray, Logical: &utf8})
		if err != nil {
			return nil, err
		}
		st.registerLeaf(fullPath, row)
		return node, nil
	default:
		node, err := st.schema.Add(fullPath, []Repetition{Optional}, typeOf(v))
		if err != nil {
			return nil, err
		}
		st.registerLeaf(fullPath, row)
		return node, nil
	}
}

func firstNonNil(list []any) any {
	for _, v := range list {
		if v != nil {
			return v
		}
	}
	return nil
}

func (st *shredState) registerLeaf(path string, row int) {
	if _, exists := st.values[path]; exists {
		return
	}
	st.values[path] = []any{}
	st.reps[path] = make([]int, row)
	st.defs[path] = make([]int, row)
}

// recordLeaf converts and appends a present value to path's columns. An
// unlocked schema widens its recorded leaf type in place on a kind
// mismatch rather than failing (original_source's merge_schema_element);
// a locked schema reports TypeMismatchError.
func (st *shredState) recordLeaf(node *Node, path string, counters []int, def int, value any, row int) error {
	lt := *node.LeafType()
	converted, err := convertLeafValue(lt, value)
	if err != nil {
		if node.Locked() {
			return &TypeMismatchError{Row: row, Path: path, Declared: lt.Physical.String(), Got: fmt.Sprintf("%T", value)}
		}
		lt = typeOf(value)
		node.widen(lt)
		converted, err = convertLeafValue(lt, value)
		if err != nil {
			return &TypeMismatchError{Row: row, Path: path, Declared: lt.Physical.String(), Got: fmt.Sprintf("%T", value)}
		}
	}

	st.values[path] = append(st.values[path], converted)
	st.reps[path] = append(st.reps[path], repLevel(counters))
	st.defs[path] = append(st.defs[path], def)
	return nil
}

// emitPlaceholders records a null at the current level for every leaf
// reachable from node, without touching any leaf's value array
// (spec.md §4.2's _none_to_column: absence propagates to every descendant
// leaf, the value arrays only ever hold present values).
func (st *shredState) emitPlaceholders(node *Node, counters []int, def int) {
	rep := repLevel(counters)
	for _, leafPath := range nodeLeaves(node) {
		st.reps[leafPath] = append(st.reps[leafPath], rep)
		st.defs[leafPath] = append(st.defs[leafPath], def)
	}
}

func nodeLeaves(node *Node) []string {
	if node.IsLeaf() {
		return []string{node.name}
	}
	return node.Leaves()
}

// convertLeafValue converts a dynamic record value to its stored physical
// representation under lt, failing if value's kind doesn't match.
func convertLeafValue(lt LeafType, value any) (any, error) {
	switch lt.Physical {
	case format.Boolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return b, nil
	case format.Int64, format.Int32, format.Int96:
		i, ok := toInt64(value)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
		return i, nil
	case format.Float, format.Double:
		f, ok := toFloat64(value)
		if !ok {
			return nil, fmt.Errorf("expected float, got %T", value)
		}
		return f, nil
	case format.ByteArray, format.FixedLenByteArray:
		b, ok := toBytes(value)
		if !ok {
			return nil, fmt.Errorf("expected string or bytes, got %T", value)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported physical type %s", lt.Physical)
	}
}
