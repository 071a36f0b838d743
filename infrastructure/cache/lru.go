// Package cache provides the bounded LRU memoizing decoded bitmaps.
package cache

import (
	"container/list"
	"sync"
)

// Key identifies one decoded bitmap: the payload's byte content plus the
// scale it was produced at. Payload is held as a string so two keys built
// from distinct byte slices with identical content compare equal and hash
// identically — value semantics, never allocation identity.
type Key struct {
	Payload string
	Scale   float64
}

// NewKey copies the payload bytes into a value-comparable key.
func NewKey(payload []byte, scale float64) Key {
	return Key{Payload: string(payload), Scale: scale}
}

// Value is a cached resource with a reference count. The cache holds one
// reference per stored entry and takes an additional one, under its lock, for
// every value it hands out; eviction, invalidation, and Clear drop only the
// cache's own reference. Callers release the reference they were handed when
// done, so implementations free the underlying bitmap only after the last
// holder is finished with it.
type Value interface {
	Acquire()
	Release()
}

// ImageCache is a bounded least-recently-used cache with request coalescing:
// concurrent GetOrCreate calls for the same missing key run produce once and
// fan the result out to every waiter.
type ImageCache struct {
	capacity int
	mutex    sync.Mutex
	items    map[Key]*list.Element
	queue    *list.List
}

type entry struct {
	key     Key
	ready   chan struct{}
	value   Value
	err     error
	done    bool
	waiters int
}

// NewImageCache creates a cache holding at most capacity entries.
func NewImageCache(capacity int) *ImageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ImageCache{
		capacity: capacity,
		items:    make(map[Key]*list.Element),
		queue:    list.New(),
	}
}

// GetOrCreate returns the cached value for key, or runs produce to create,
// store, and return it. The produce call happens outside the cache lock; a
// second caller arriving mid-produce blocks on the same entry instead of
// producing again. A failed produce is reported to all waiters and not
// cached, so a later request may retry.
//
// Every successful return carries its own reference to the value: the hit
// path acquires under the lock, the miss path keeps the producer's initial
// reference, and blocked waiters have theirs reserved before the producer
// publishes. The caller releases it when finished.
func (c *ImageCache) GetOrCreate(key Key, produce func() (Value, error)) (Value, error) {
	c.mutex.Lock()

	if element, exists := c.items[key]; exists {
		c.queue.MoveToFront(element)
		e := element.Value.(*entry)
		if e.done {
			if e.err == nil {
				e.value.Acquire()
			}
			c.mutex.Unlock()
			return e.value, e.err
		}
		// The producer acquires a reference per registered waiter before
		// publishing, so the value cannot be freed underneath us.
		e.waiters++
		c.mutex.Unlock()
		<-e.ready
		return e.value, e.err
	}

	e := &entry{key: key, ready: make(chan struct{})}
	element := c.queue.PushFront(e)
	c.items[key] = element

	if c.queue.Len() > c.capacity {
		c.evict()
	}
	c.mutex.Unlock()

	value, err := produce()

	c.mutex.Lock()
	e.value = value
	e.err = err
	e.done = true
	if err != nil {
		// Do not cache failures; drop the entry so a new request retries.
		if current, exists := c.items[key]; exists && current == element {
			c.queue.Remove(element)
			delete(c.items, key)
		}
	} else {
		// One reference for the cache itself plus one per blocked waiter.
		// The producer's initial reference transfers to this caller.
		value.Acquire()
		for i := 0; i < e.waiters; i++ {
			value.Acquire()
		}
	}
	close(e.ready)
	c.mutex.Unlock()

	return value, err
}

// Get returns the value for key if present and already produced. The
// returned value carries its own reference; the caller releases it when done.
func (c *ImageCache) Get(key Key) (Value, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, exists := c.items[key]
	if !exists {
		return nil, false
	}
	e := element.Value.(*entry)
	if !e.done || e.err != nil {
		return nil, false
	}
	c.queue.MoveToFront(element)
	e.value.Acquire()
	return e.value, true
}

// Invalidate removes the entry for key, if present, and drops the cache's
// reference to its value.
func (c *ImageCache) Invalidate(key Key) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, exists := c.items[key]
	if !exists {
		return
	}
	e := element.Value.(*entry)
	if !e.done {
		// An in-flight producer still owns the value; leave it alone.
		return
	}
	c.queue.Remove(element)
	delete(c.items, key)
	if e.value != nil {
		e.value.Release()
	}
}

// Clear removes every completed entry, dropping the cache's reference to
// each value. In-flight entries are left for their producers to finish.
func (c *ImageCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var next *list.Element
	for element := c.queue.Front(); element != nil; element = next {
		next = element.Next()
		e := element.Value.(*entry)
		if !e.done {
			continue
		}
		c.queue.Remove(element)
		delete(c.items, e.key)
		if e.value != nil {
			e.value.Release()
		}
	}
}

// Size returns the current number of entries, including in-flight ones.
func (c *ImageCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.queue.Len()
}

// evict removes the least recently used completed entry and drops the
// cache's reference to its value; holders that already looked it up keep it
// alive until they release. In-flight entries are skipped: their producers
// still own the value, so the cache can briefly exceed capacity while
// several first requests overlap. Caller must hold the mutex.
func (c *ImageCache) evict() {
	for element := c.queue.Back(); element != nil; element = element.Prev() {
		e := element.Value.(*entry)
		if !e.done {
			continue
		}
		c.queue.Remove(element)
		delete(c.items, e.key)
		if e.value != nil {
			e.value.Release()
		}
		return
	}
}
