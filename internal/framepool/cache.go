package framepool

import "container/list"

// FrameCache is the associative FrameId -> *Frame map with an eviction
// ordering, built as an LRU: a container/list tracking recency, with the map
// holding element pointers for O(1) lookup.
//
// The front of the list is the most-recently-used entry; the back is the
// best eviction candidate.
type FrameCache struct {
	order *list.List
	index map[FrameId]*list.Element
}

func newFrameCache() *FrameCache {
	return &FrameCache{
		order: list.New(),
		index: make(map[FrameId]*list.Element),
	}
}

// Get returns the frame for id, moving it to the front (most-recently-used)
// on a hit.
func (c *FrameCache) Get(id FrameId) (*Frame, bool) {
	el, ok := c.index[id]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*Frame), true
}

// Peek returns the frame for id without affecting recency.
func (c *FrameCache) Peek(id FrameId) (*Frame, bool) {
	el, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return el.Value.(*Frame), true
}

// Put inserts frame at the front of the eviction order under id. Callers
// must not Put an id that is already present.
func (c *FrameCache) Put(id FrameId, f *Frame) {
	el := c.order.PushFront(f)
	c.index[id] = el
}

// Remove drops id from the cache. It is a no-op if id is not present.
func (c *FrameCache) Remove(id FrameId) {
	el, ok := c.index[id]
	if !ok {
		return
	}
	c.order.Remove(el)
	delete(c.index, id)
}

// Len reports how many frames are currently resident.
func (c *FrameCache) Len() int {
	return c.order.Len()
}

// Foreach walks frames in eviction-candidate order (least-recently-used
// first), stopping early if visit returns false. visit may remove the
// current frame from the cache (via Remove) without disturbing the
// traversal, since the next element is captured before visit runs.
func (c *FrameCache) Foreach(visit func(id FrameId, f *Frame) bool) {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		f := el.Value.(*Frame)
		if !visit(f.ID, f) {
			return
		}
		el = prev
	}
}
