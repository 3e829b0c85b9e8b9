package substate

// IdIndex is a per-Model bi-map between live nodes and stable integer ids
// (§4.8). Entries hold weak references only: the index never keeps a node
// alive, it simply tracks the mapping while the node is part of the tree.
type IdIndex struct {
	byID     map[uint64]Node
	maxID    uint64
	clearing bool
}

func newIDIndex() *IdIndex {
	return &IdIndex{byID: make(map[uint64]Node)}
}

// add registers node under id. If id > 0 the caller is restoring a
// previously assigned id (deserialization, undo of a removal, redo of an
// insert); max_id is advanced to at least id. If id == 0 a fresh id is
// minted via max_id+1. The final id used is returned.
func (idx *IdIndex) add(node Node, id uint64) uint64 {
	if id > 0 {
		idx.byID[id] = node
		if id > idx.maxID {
			idx.maxID = id
		}
		return id
	}
	idx.maxID++
	idx.byID[idx.maxID] = node
	return idx.maxID
}

// remove drops id's mapping. While the index is clearing, individual
// removals are skipped for efficiency; the whole map is dropped by
// endClear (§4.8).
func (idx *IdIndex) remove(id uint64) {
	if idx.clearing {
		return
	}
	delete(idx.byID, id)
}

func (idx *IdIndex) get(id uint64) (Node, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

func (idx *IdIndex) maxAssigned() uint64 {
	return idx.maxID
}

// beginClear/endClear bracket a full model reset: individual remove calls
// made while a subtree is being torn down are no-ops, and the whole map is
// dropped in one shot at the end.
func (idx *IdIndex) beginClear() {
	idx.clearing = true
}

func (idx *IdIndex) endClear() {
	idx.clearing = false
	idx.byID = make(map[uint64]Node)
	idx.maxID = 0
}
