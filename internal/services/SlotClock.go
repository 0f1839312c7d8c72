package services

import (
	"time"

	"go.uber.org/atomic"
)

// SlotClock hands out strictly increasing unix-millisecond values, so pit
// slot keys issued by this process never collide and sort by creation time.
// Slots written by other processes are fed back through Observe.
type SlotClock struct {
	now  func() time.Time
	last atomic.Int64
}

func NewSlotClock(now func() time.Time) *SlotClock {
	if now == nil {
		now = time.Now
	}
	return &SlotClock{now: now}
}

func (c *SlotClock) Next() int64 {
	for {
		ms := c.now().UnixMilli()
		last := c.last.Load()
		if ms <= last {
			ms = last + 1
		}
		if c.last.CompareAndSwap(last, ms) {
			return ms
		}
	}
}

// Observe makes every later Next return a value greater than ms.
func (c *SlotClock) Observe(ms int64) {
	for {
		last := c.last.Load()
		if ms <= last || c.last.CompareAndSwap(last, ms) {
			return
		}
	}
}
