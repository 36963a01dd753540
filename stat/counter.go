package stat

import (
	"encoding/json"
	"strconv"
	"sync/atomic"
)

// Counter never drops below zero. It is safe for concurrent use.
type Counter struct {
	v atomic.Int64
}

func NewCounter(start int64) *Counter {
	c := new(Counter)
	c.v.Store(start)
	return c
}

func (c *Counter) Incr() {
	c.v.Add(1)
}

// Decr is a no-op on a zero counter.
func (c *Counter) Decr() {
	for {
		old := c.v.Load()
		if old <= 0 || c.v.CompareAndSwap(old, old-1) {
			return
		}
	}
}

func (c *Counter) Int() int64 {
	return c.v.Load()
}

func (c *Counter) String() string {
	return strconv.FormatInt(c.Int(), 10)
}

func (c *Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Int())
}
