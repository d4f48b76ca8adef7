package cache

// lruNode is a node in a doubly-linked LRU list.
// The node stores its key for O(1) deletion from the parent map.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// lruList is a doubly-linked list ordered by recency.
// The head is the most recently used, tail is least recently used.
type lruList[K comparable, V any] struct {
	head *lruNode[K, V]
	tail *lruNode[K, V]
	len  int
}

// pushFront links node at the front (most recently used).
func (l *lruList[K, V]) pushFront(node *lruNode[K, V]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// moveToFront moves an existing node to the front.
func (l *lruList[K, V]) moveToFront(node *lruNode[K, V]) {
	if node == l.head {
		return
	}
	l.unlink(node)
	l.pushFront(node)
}

// unlink removes a node from the list and clears its pointers.
func (l *lruList[K, V]) unlink(node *lruNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
	l.len--
}

// LRU maps keys to values and remembers the order in which they were
// last used. It never evicts on its own: callers decide when to drop
// the oldest entry, so they can release whatever the value owns first.
//
// LRU is not safe for concurrent use; callers must serialize access.
type LRU[K comparable, V any] struct {
	items map[K]*lruNode[K, V]
	list  lruList[K, V]
}

// NewLRU creates an empty LRU.
func NewLRU[K comparable, V any]() *LRU[K, V] {
	return &LRU[K, V]{items: make(map[K]*lruNode[K, V])}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	return c.list.len
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	node, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.list.moveToFront(node)
	return node.value, true
}

// Peek returns the value for key without touching its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	node, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return node.value, true
}

// Add inserts or replaces the value for key and marks it most recently
// used. It returns the previous value, if any.
func (c *LRU[K, V]) Add(key K, value V) (V, bool) {
	if node, ok := c.items[key]; ok {
		old := node.value
		node.value = value
		c.list.moveToFront(node)
		return old, true
	}
	node := &lruNode[K, V]{key: key, value: value}
	c.items[key] = node
	c.list.pushFront(node)
	var zero V
	return zero, false
}

// Remove deletes key and returns its value.
func (c *LRU[K, V]) Remove(key K) (V, bool) {
	node, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.list.unlink(node)
	delete(c.items, key)
	return node.value, true
}

// Oldest returns the least recently used entry without removing it.
func (c *LRU[K, V]) Oldest() (K, V, bool) {
	if c.list.tail == nil {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	return c.list.tail.key, c.list.tail.value, true
}

// RemoveOldest removes and returns the least recently used entry.
func (c *LRU[K, V]) RemoveOldest() (K, V, bool) {
	node := c.list.tail
	if node == nil {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	c.list.unlink(node)
	delete(c.items, node.key)
	return node.key, node.value, true
}

// Range calls fn for each entry from most to least recently used until fn
// returns false. fn must not modify the LRU.
func (c *LRU[K, V]) Range(fn func(K, V) bool) {
	for node := c.list.head; node != nil; node = node.next {
		if !fn(node.key, node.value) {
			return
		}
	}
}

// RangeOldest is Range in the opposite order.
func (c *LRU[K, V]) RangeOldest(fn func(K, V) bool) {
	for node := c.list.tail; node != nil; node = node.prev {
		if !fn(node.key, node.value) {
			return
		}
	}
}

// Clear removes all entries.
func (c *LRU[K, V]) Clear() {
	clear(c.items)
	c.list = lruList[K, V]{}
}
