package paginate

import "sync"

// Context is the page numbering state of one pagination session.
type Context struct {
	mu   sync.Mutex
	next int
}

// BeginSession starts a numbering context whose first page is start.
// Values below 1 start at 1.
func BeginSession(start int) *Context {
	return &Context{next: max(start, 1)}
}

// Next returns the next page number and advances the counter.
func (c *Context) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next
	c.next++
	return n
}

// Peek returns the number Next would return.
func (c *Context) Peek() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Reset restarts numbering at start.
func (c *Context) Reset(start int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = max(start, 1)
}
