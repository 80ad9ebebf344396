// Package hashmap implements a persistent hash array mapped trie keyed by
// strings.
//
// A Map is immutable: Assoc and Dissoc return new maps that share most of
// their structure with the original. Copying a Map value is therefore a
// constant-time snapshot.
package hashmap

import "github.com/junhg0211/lintre/pkg/persistent/hash"

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// Map is a persistent map from strings to values of type V. The zero value is
// an empty map ready to use.
type Map[V any] struct {
	count int
	root  node[V]
}

// Len returns the number of entries in the map.
func (m Map[V]) Len() int {
	return m.count
}

// Index returns the value associated with k, and whether there is one.
func (m Map[V]) Index(k string) (V, bool) {
	if m.root == nil {
		var zero V
		return zero, false
	}
	return m.root.find(0, hash.String(k), k)
}

// HasKey reports whether the map has the given key.
func (m Map[V]) HasKey(k string) bool {
	_, ok := m.Index(k)
	return ok
}

// Assoc returns an almost identical map, with k associated with v.
func (m Map[V]) Assoc(k string, v V) Map[V] {
	root := m.root
	if root == nil {
		root = &bitmapNode[V]{}
	}
	newRoot, added := root.assoc(0, hash.String(k), k, v)
	newCount := m.count
	if added {
		newCount++
	}
	return Map[V]{newCount, newRoot}
}

// Dissoc returns an almost identical map, with k associated with no value.
func (m Map[V]) Dissoc(k string) Map[V] {
	if m.root == nil {
		return m
	}
	newRoot, deleted := m.root.without(0, hash.String(k), k)
	if !deleted {
		return m
	}
	return Map[V]{m.count - 1, newRoot}
}

// Iterator returns an iterator over the map. The iteration order is
// deterministic for maps built by the same sequence of operations, but is
// otherwise unspecified.
func (m Map[V]) Iterator() Iterator[V] {
	if m.root == nil {
		return emptyIterator[V]{}
	}
	return m.root.iterator()
}

// Keys returns all keys of the map, in iteration order.
func (m Map[V]) Keys() []string {
	keys := make([]string, 0, m.count)
	for it := m.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		keys = append(keys, k)
	}
	return keys
}

// Iterator is an iterator over map elements. It can be used like this:
//
//	for it := m.Iterator(); it.HasElem(); it.Next() {
//	    key, value := it.Elem()
//	    // do something with elem...
//	}
type Iterator[V any] interface {
	// Elem returns the current key-value pair.
	Elem() (string, V)
	// HasElem returns whether the iterator is pointing to an element.
	HasElem() bool
	// Next moves the iterator to the next position.
	Next()
}

// node is an interface for all nodes in the trie.
type node[V any] interface {
	// assoc adds a new pair of key and value. It returns the new node, and
	// whether the key did not exist before (i.e. a new pair has been added,
	// instead of replaced).
	assoc(shift, hash uint32, k string, v V) (node[V], bool)
	// without removes a key. It returns the new node and whether the key
	// existed before. A nil node means the subtree became empty.
	without(shift, hash uint32, k string) (node[V], bool)
	// find finds the value for a key. It returns the found value (if any) and
	// whether such a pair exists.
	find(shift, hash uint32, k string) (V, bool)
	// iterator returns an iterator.
	iterator() Iterator[V]
}

// arrayNode stores all of its children in an array. The array is always at
// least 1/4 full, otherwise it will be packed into a bitmapNode.
type arrayNode[V any] struct {
	nChildren int
	children  [nodeCap]node[V]
}

func (n *arrayNode[V]) withNewChild(i uint32, newChild node[V], d int) *arrayNode[V] {
	newChildren := n.children
	newChildren[i] = newChild
	return &arrayNode[V]{n.nChildren + d, newChildren}
}

func (n *arrayNode[V]) assoc(shift, hash uint32, k string, v V) (node[V], bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		newChild, _ := (&bitmapNode[V]{}).assoc(shift+chunkBits, hash, k, v)
		return n.withNewChild(idx, newChild, 1), true
	}
	newChild, added := child.assoc(shift+chunkBits, hash, k, v)
	return n.withNewChild(idx, newChild, 0), added
}

func (n *arrayNode[V]) without(shift, hash uint32, k string) (node[V], bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		return n, false
	}
	newChild, deleted := child.without(shift+chunkBits, hash, k)
	if !deleted {
		return n, false
	}
	if newChild == nil {
		if n.nChildren <= nodeCap/4 {
			// Less than 1/4 full; shrink.
			return n.pack(int(idx)), true
		}
		return n.withNewChild(idx, nil, -1), true
	}
	return n.withNewChild(idx, newChild, 0), true
}

func (n *arrayNode[V]) pack(skip int) node[V] {
	newNode := &bitmapNode[V]{0, make([]mapEntry[V], 0, n.nChildren-1)}
	for i, child := range n.children {
		if i != skip && child != nil {
			newNode.bitmap |= 1 << uint(i)
			newNode.entries = append(newNode.entries, mapEntry[V]{child: child})
		}
	}
	if len(newNode.entries) == 0 {
		return nil
	}
	return newNode
}

func (n *arrayNode[V]) find(shift, hash uint32, k string) (V, bool) {
	child := n.children[chunk(shift, hash)]
	if child == nil {
		var zero V
		return zero, false
	}
	return child.find(shift+chunkBits, hash, k)
}

func (n *arrayNode[V]) iterator() Iterator[V] {
	it := &arrayNodeIterator[V]{n, 0, nil}
	it.fixCurrent()
	return it
}

type arrayNodeIterator[V any] struct {
	n       *arrayNode[V]
	index   int
	current Iterator[V]
}

func (it *arrayNodeIterator[V]) fixCurrent() {
	for ; it.index < nodeCap && it.n.children[it.index] == nil; it.index++ {
	}
	if it.index < nodeCap {
		it.current = it.n.children[it.index].iterator()
	} else {
		it.current = nil
	}
}

func (it *arrayNodeIterator[V]) Elem() (string, V) {
	return it.current.Elem()
}

func (it *arrayNodeIterator[V]) HasElem() bool {
	return it.current != nil
}

func (it *arrayNodeIterator[V]) Next() {
	it.current.Next()
	if !it.current.HasElem() {
		it.index++
		it.fixCurrent()
	}
}

// bitmapNode stores its entries sparsely, indexed by the bitmap.
type bitmapNode[V any] struct {
	bitmap  uint32
	entries []mapEntry[V]
}

// mapEntry is either a leaf (child is nil) or a pointer to a subtree.
type mapEntry[V any] struct {
	key   string
	value V
	child node[V]
}

func chunk(shift, hash uint32) uint32 {
	return (hash >> shift) & chunkMask
}

func bitpos(shift, hash uint32) uint32 {
	return 1 << chunk(shift, hash)
}

func index(bitmap, bit uint32) uint32 {
	return popCount(bitmap & (bit - 1))
}

const (
	m1  uint32 = 0x55555555
	m2  uint32 = 0x33333333
	m4  uint32 = 0x0f0f0f0f
	m8  uint32 = 0x00ff00ff
	m16 uint32 = 0x0000ffff
)

func popCount(u uint32) uint32 {
	u = (u & m1) + ((u >> 1) & m1)
	u = (u & m2) + ((u >> 2) & m2)
	u = (u & m4) + ((u >> 4) & m4)
	u = (u & m8) + ((u >> 8) & m8)
	u = (u & m16) + ((u >> 16) & m16)
	return u
}

func createNode[V any](shift uint32, k1 string, v1 V, h2 uint32, k2 string, v2 V) node[V] {
	h1 := hash.String(k1)
	if h1 == h2 {
		return &collisionNode[V]{h1, []mapEntry[V]{{key: k1, value: v1}, {key: k2, value: v2}}}
	}
	n, _ := (&bitmapNode[V]{}).assoc(shift, h1, k1, v1)
	n, _ = n.assoc(shift, h2, k2, v2)
	return n
}

func (n *bitmapNode[V]) unpack(shift, idx uint32, newChild node[V]) *arrayNode[V] {
	var newNode arrayNode[V]
	newNode.nChildren = len(n.entries) + 1
	newNode.children[idx] = newChild
	j := 0
	for i := uint(0); i < nodeCap; i++ {
		if (n.bitmap>>i)&1 != 0 {
			entry := n.entries[j]
			j++
			if entry.child != nil {
				newNode.children[i] = entry.child
			} else {
				newNode.children[i], _ = (&bitmapNode[V]{}).assoc(
					shift+chunkBits, hash.String(entry.key), entry.key, entry.value)
			}
		}
	}
	return &newNode
}

func (n *bitmapNode[V]) withoutEntry(bit, idx uint32) node[V] {
	if n.bitmap == bit {
		return nil
	}
	return &bitmapNode[V]{n.bitmap ^ bit, withoutEntry(n.entries, idx)}
}

func withoutEntry[V any](entries []mapEntry[V], idx uint32) []mapEntry[V] {
	newEntries := make([]mapEntry[V], len(entries)-1)
	copy(newEntries[:idx], entries[:idx])
	copy(newEntries[idx:], entries[idx+1:])
	return newEntries
}

func (n *bitmapNode[V]) withReplacedEntry(i uint32, entry mapEntry[V]) *bitmapNode[V] {
	return &bitmapNode[V]{n.bitmap, replaceEntry(n.entries, i, entry)}
}

func replaceEntry[V any](entries []mapEntry[V], i uint32, entry mapEntry[V]) []mapEntry[V] {
	newEntries := append([]mapEntry[V](nil), entries...)
	newEntries[i] = entry
	return newEntries
}

func (n *bitmapNode[V]) assoc(shift, hash uint32, k string, v V) (node[V], bool) {
	bit := bitpos(shift, hash)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		// Entry does not exist yet
		if len(n.entries) >= nodeCap/2 {
			// Unpack into an arrayNode
			newNode, _ := (&bitmapNode[V]{}).assoc(shift+chunkBits, hash, k, v)
			return n.unpack(shift, chunk(shift, hash), newNode), true
		}
		newEntries := make([]mapEntry[V], len(n.entries)+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = mapEntry[V]{key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode[V]{n.bitmap | bit, newEntries}, true
	}
	// Entry exists
	entry := n.entries[idx]
	if entry.child != nil {
		newChild, added := entry.child.assoc(shift+chunkBits, hash, k, v)
		return n.withReplacedEntry(idx, mapEntry[V]{child: newChild}), added
	}
	if k == entry.key {
		// Identical key, replace
		return n.withReplacedEntry(idx, mapEntry[V]{key: k, value: v}), false
	}
	// Create and insert new inner node
	newNode := createNode(shift+chunkBits, entry.key, entry.value, hash, k, v)
	return n.withReplacedEntry(idx, mapEntry[V]{child: newNode}), true
}

func (n *bitmapNode[V]) without(shift, hash uint32, k string) (node[V], bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		return n, false
	}
	idx := index(n.bitmap, bit)
	entry := n.entries[idx]
	if entry.child != nil {
		newChild, deleted := entry.child.without(shift+chunkBits, hash, k)
		if !deleted {
			return n, false
		}
		if newChild == nil {
			// Sole element in subtree deleted
			return n.withoutEntry(bit, idx), true
		}
		return n.withReplacedEntry(idx, mapEntry[V]{child: newChild}), true
	} else if entry.key == k {
		return n.withoutEntry(bit, idx), true
	}
	return n, false
}

func (n *bitmapNode[V]) find(shift, hash uint32, k string) (V, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit != 0 {
		entry := n.entries[index(n.bitmap, bit)]
		if entry.child != nil {
			return entry.child.find(shift+chunkBits, hash, k)
		} else if entry.key == k {
			return entry.value, true
		}
	}
	var zero V
	return zero, false
}

func (n *bitmapNode[V]) iterator() Iterator[V] {
	it := &bitmapNodeIterator[V]{n, 0, nil}
	it.fixCurrent()
	return it
}

type bitmapNodeIterator[V any] struct {
	n       *bitmapNode[V]
	index   int
	current Iterator[V]
}

func (it *bitmapNodeIterator[V]) fixCurrent() {
	if it.index < len(it.n.entries) && it.n.entries[it.index].child != nil {
		it.current = it.n.entries[it.index].child.iterator()
	} else {
		it.current = nil
	}
}

func (it *bitmapNodeIterator[V]) Elem() (string, V) {
	if it.current != nil {
		return it.current.Elem()
	}
	entry := it.n.entries[it.index]
	return entry.key, entry.value
}

func (it *bitmapNodeIterator[V]) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *bitmapNodeIterator[V]) Next() {
	if it.current != nil {
		it.current.Next()
	}
	if it.current == nil || !it.current.HasElem() {
		it.index++
		it.fixCurrent()
	}
}

// collisionNode stores entries whose keys have the same full hash.
type collisionNode[V any] struct {
	hash    uint32
	entries []mapEntry[V]
}

func (n *collisionNode[V]) assoc(shift, hash uint32, k string, v V) (node[V], bool) {
	if hash == n.hash {
		idx := n.findIndex(k)
		if idx != -1 {
			return &collisionNode[V]{
				n.hash, replaceEntry(n.entries, uint32(idx), mapEntry[V]{key: k, value: v})}, false
		}
		newEntries := make([]mapEntry[V], len(n.entries)+1)
		copy(newEntries, n.entries)
		newEntries[len(n.entries)] = mapEntry[V]{key: k, value: v}
		return &collisionNode[V]{n.hash, newEntries}, true
	}
	// Wrap in a bitmapNode and add the entry
	wrap := bitmapNode[V]{bitpos(shift, n.hash), []mapEntry[V]{{child: n}}}
	return wrap.assoc(shift, hash, k, v)
}

func (n *collisionNode[V]) without(shift, hash uint32, k string) (node[V], bool) {
	idx := n.findIndex(k)
	if idx == -1 {
		return n, false
	}
	if len(n.entries) == 1 {
		return nil, true
	}
	return &collisionNode[V]{n.hash, withoutEntry(n.entries, uint32(idx))}, true
}

func (n *collisionNode[V]) find(shift, hash uint32, k string) (V, bool) {
	idx := n.findIndex(k)
	if idx == -1 {
		var zero V
		return zero, false
	}
	return n.entries[idx].value, true
}

func (n *collisionNode[V]) findIndex(k string) int {
	for i, entry := range n.entries {
		if entry.key == k {
			return i
		}
	}
	return -1
}

func (n *collisionNode[V]) iterator() Iterator[V] {
	return &collisionNodeIterator[V]{n, 0}
}

type collisionNodeIterator[V any] struct {
	n     *collisionNode[V]
	index int
}

func (it *collisionNodeIterator[V]) Elem() (string, V) {
	entry := it.n.entries[it.index]
	return entry.key, entry.value
}

func (it *collisionNodeIterator[V]) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *collisionNodeIterator[V]) Next() {
	it.index++
}

type emptyIterator[V any] struct{}

func (emptyIterator[V]) Elem() (string, V) { panic("Elem called on empty iterator") }
func (emptyIterator[V]) HasElem() bool     { return false }
func (emptyIterator[V]) Next()             {}
