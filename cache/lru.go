package cache

import "bytes"

// LRU is a single byte-budgeted shard: an arena-backed doubly linked list
// ordered from least (head) to most (tail) recently used, plus a key→handle
// index. The sum of len(key)+len(value) over resident entries never exceeds
// Capacity.
//
// LRU is not safe for concurrent use; see SafeLRU.
type LRU struct {
	arena
	index map[string]handle
	head  handle // LRU
	tail  handle // MRU

	size     int64
	capacity int64

	// onEvict observes capacity evictions (not Delete). Set by SafeLRU.
	onEvict func(key string, value []byte)
}

// NewLRU returns an empty shard with the given byte budget.
func NewLRU(capacity int64) *LRU {
	return &LRU{
		index:    make(map[string]handle),
		head:     nilHandle,
		tail:     nilHandle,
		capacity: capacity,
	}
}

// Put inserts or overwrites key→value and marks the entry most recently used,
// evicting from the head until the new cost fits. Returns false, without any
// side effect, if the entry alone exceeds the capacity.
func (l *LRU) Put(key, value []byte) bool {
	cost := entryCost(key, value)
	if cost > l.capacity {
		return false
	}
	if h, ok := l.index[string(key)]; ok {
		l.update(h, value)
		return true
	}
	l.insert(key, value, cost)
	return true
}

// PutIfAbsent is Put restricted to the insert path.
func (l *LRU) PutIfAbsent(key, value []byte) bool {
	cost := entryCost(key, value)
	if cost > l.capacity {
		return false
	}
	if _, ok := l.index[string(key)]; ok {
		return false
	}
	l.insert(key, value, cost)
	return true
}

// Set is Put restricted to the update path.
func (l *LRU) Set(key, value []byte) bool {
	if entryCost(key, value) > l.capacity {
		return false
	}
	h, ok := l.index[string(key)]
	if !ok {
		return false
	}
	l.update(h, value)
	return true
}

// Delete removes key and returns whether it was present.
func (l *LRU) Delete(key []byte) bool {
	h, ok := l.index[string(key)]
	if !ok {
		return false
	}
	n := l.at(h)
	l.size -= n.cost()
	delete(l.index, n.key)
	l.unlink(h)
	l.release(h)
	return true
}

// Get returns the value for key and moves the entry to the tail.
// The returned slice must not be modified.
func (l *LRU) Get(key []byte) ([]byte, bool) {
	h, ok := l.index[string(key)]
	if !ok {
		return nil, false
	}
	l.moveToTail(h)
	return l.at(h).value, true
}

// Len returns the number of resident entries.
func (l *LRU) Len() int { return len(l.index) }

// Size returns the bytes charged by resident entries.
func (l *LRU) Size() int64 { return l.size }

// Capacity returns the byte budget.
func (l *LRU) Capacity() int64 { return l.capacity }

// Keys returns the resident keys from least to most recently used.
func (l *LRU) Keys() [][]byte {
	keys := make([][]byte, 0, len(l.index))
	for h := l.head; h != nilHandle; h = l.at(h).next {
		keys = append(keys, []byte(l.at(h).key))
	}
	return keys
}

// -------------------- internals --------------------

func entryCost(key, value []byte) int64 { return int64(len(key) + len(value)) }

// insert appends a new entry at the tail after making room for cost.
// The caller has checked cost <= capacity and that key is absent.
func (l *LRU) insert(key, value []byte, cost int64) {
	l.evictFor(cost)
	h := l.alloc(string(key), bytes.Clone(value))
	l.pushBack(h)
	l.index[l.at(h).key] = h
	l.size += cost
}

// update replaces the value of h and makes it the tail. The entry is moved
// before evicting, so it is never its own victim: once it is the only
// entry left, size equals its old cost and old+delta fits the capacity.
func (l *LRU) update(h handle, value []byte) {
	delta := int64(len(value)) - int64(len(l.at(h).value))
	l.moveToTail(h)
	l.evictFor(delta)
	l.at(h).value = bytes.Clone(value)
	l.size += delta
}

// evictFor removes head entries until size+need fits the capacity.
func (l *LRU) evictFor(need int64) {
	for l.size+need > l.capacity && l.head != nilHandle {
		l.evictHead()
	}
}

func (l *LRU) evictHead() {
	h := l.head
	n := *l.at(h)
	l.size -= n.cost()
	delete(l.index, n.key)
	l.unlink(h)
	l.release(h)
	if l.onEvict != nil {
		l.onEvict(n.key, n.value)
	}
}

// unlink detaches h, fixing head/tail when h sits at either end.
func (l *LRU) unlink(h handle) {
	n := l.at(h)
	if n.prev != nilHandle {
		l.at(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nilHandle {
		l.at(n.next).prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nilHandle, nilHandle
}

// pushBack appends a detached h after the current tail.
func (l *LRU) pushBack(h handle) {
	n := l.at(h)
	n.prev = l.tail
	n.next = nilHandle
	if l.tail != nilHandle {
		l.at(l.tail).next = h
	} else {
		l.head = h
	}
	l.tail = h
}

// moveToTail marks h most recently used in O(1).
func (l *LRU) moveToTail(h handle) {
	if h == l.tail {
		return
	}
	l.unlink(h)
	l.pushBack(h)
}
