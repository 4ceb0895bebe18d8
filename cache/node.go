package cache

// handle addresses a node inside a shard's arena. Handles stay valid until
// the node is released; nilHandle marks an absent link. It is as wide as a
// slice index so any arena length is addressable.
type handle int

const nilHandle handle = -1

// node is an arena-resident list element. The list owns every node; prev is
// a back-reference used only for O(1) detach, never for lifetime.
type node struct {
	key   string
	value []byte

	// head is LRU, tail is MRU.
	prev handle // towards head
	next handle // towards tail
}

// cost is the number of bytes the entry charges against the shard budget.
func (n *node) cost() int64 { return int64(len(n.key) + len(n.value)) }

// arena stores nodes in a slice and recycles released slots through a free
// list. Pointers returned by at are invalidated by alloc; hold handles instead.
type arena struct {
	nodes []node
	free  []handle
}

func (a *arena) at(h handle) *node { return &a.nodes[h] }

// alloc stores a detached node and returns its handle.
func (a *arena) alloc(key string, value []byte) handle {
	n := node{key: key, value: value, prev: nilHandle, next: nilHandle}
	if k := len(a.free); k > 0 {
		h := a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[h] = n
		return h
	}
	a.nodes = append(a.nodes, n)
	return handle(len(a.nodes) - 1)
}

// release clears the slot (dropping key/value references) and recycles it.
func (a *arena) release(h handle) {
	a.nodes[h] = node{prev: nilHandle, next: nilHandle}
	a.free = append(a.free, h)
}
