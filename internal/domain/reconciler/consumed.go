package reconciler

import "sync"

// ConsumedSet records which settlements have been allocated during a run.
// A settlement id enters the set at most once; the set is safe for
// concurrent use so it can serve as the single exclusivity authority.
type ConsumedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewConsumedSet creates an empty set sized for n settlements.
func NewConsumedSet(n int) *ConsumedSet {
	return &ConsumedSet{ids: make(map[string]struct{}, n)}
}

// Contains reports whether id has been consumed.
func (c *ConsumedSet) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

// Consume marks id as used. It returns false if id was already consumed,
// in which case the caller must not allocate it.
func (c *ConsumedSet) Consume(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

// Len returns the number of consumed settlements.
func (c *ConsumedSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
