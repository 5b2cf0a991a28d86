package pyast

import "fmt"

// OverflowError reports that a module produced more nodes than fit in its
// NodeIndex range (see Range).
type OverflowError struct {
	ModuleID int
	Count    int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("module %d: node index overflow (%d nodes, budget %d)", e.ModuleID, e.Count, Range)
}

// IndexModule walks mod in traversal order and assigns each node a stable
// NodeIndex drawn from [moduleID*Range, (moduleID+1)*Range). It is the only
// pass permitted to mutate a parsed AST in place.
func IndexModule(moduleID int, mod *Module) error {
	base := NodeIndex(moduleID) * Range
	next := int64(0)
	var overflow error

	Visit(mod, func(n Node) bool {
		if overflow != nil {
			return false
		}
		if next >= Range {
			overflow = &OverflowError{ModuleID: moduleID, Count: next + 1}
			return false
		}
		SetIndex(n, base+NodeIndex(next))
		next++
		return true
	})

	return overflow
}

// NodeIndexMap records how indices from one tree correspond to another,
// e.g. for debugging renames or building source maps.
type NodeIndexMap struct {
	entries map[[2]int64]NodeIndex
}

// NewNodeIndexMap returns an empty map.
func NewNodeIndexMap() *NodeIndexMap {
	return &NodeIndexMap{entries: make(map[[2]int64]NodeIndex)}
}

// Record stores (originalModule, originalIndex) -> transformedIndex.
func (m *NodeIndexMap) Record(originalModule int, originalIndex, transformedIndex NodeIndex) {
	m.entries[[2]int64{int64(originalModule), int64(originalIndex)}] = transformedIndex
}

// Lookup returns the transformed index recorded for (originalModule, originalIndex).
func (m *NodeIndexMap) Lookup(originalModule int, originalIndex NodeIndex) (NodeIndex, bool) {
	v, ok := m.entries[[2]int64{int64(originalModule), int64(originalIndex)}]
	return v, ok
}
