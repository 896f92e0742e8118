package descriptor

import (
	"context"
	"fmt"
	"sync"

	"roilab/internal/roi"
	"roilab/internal/sequence"
)

// Cache is a keyed (roi, descriptor) value store that enforces the
// NeedRecompute contract: when an attached ROI publishes an event, exactly
// the entries whose descriptor reports the value stale are dropped.
type Cache struct {
	mu      sync.Mutex
	reg     *Registry
	values  map[string]map[string]float64
	enabled bool
}

// NewCache creates an enabled cache over the given registry.
func NewCache(reg *Registry) *Cache {
	return &Cache{reg: reg, values: make(map[string]map[string]float64), enabled: true}
}

// SetEnabled toggles caching. A disabled cache computes every call and
// stores nothing.
func (c *Cache) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.values = make(map[string]map[string]float64)
	}
}

// Attach subscribes the cache to the ROI's events so its entries invalidate
// per descriptor predicate.
func (c *Cache) Attach(r roi.ROI) {
	r.AddListener(func(ev *roi.Event) {
		c.Invalidate(ev)
	})
}

// Invalidate drops the entries the event makes stale.
func (c *Cache) Invalidate(ev *roi.Event) {
	key := roiKey(ev.Source)
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.values[key]
	if entries == nil {
		return
	}
	for _, d := range c.reg.All() {
		if d.NeedRecompute(ev) {
			delete(entries, d.ID())
		}
	}
}

// Forget drops every entry for the ROI, e.g. when it is detached from its
// sequence.
func (c *Cache) Forget(r roi.ROI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, roiKey(r))
}

// Compute returns the cached value for (roi, descriptor) or computes and
// stores it. Errors are never cached.
func (c *Cache) Compute(ctx context.Context, d Descriptor, r roi.ROI, seq *sequence.Sequence) (float64, error) {
	key := roiKey(r)

	c.mu.Lock()
	if c.enabled {
		if v, ok := c.values[key][d.ID()]; ok {
			c.mu.Unlock()
			return v, nil
		}
	}
	c.mu.Unlock()

	v, err := d.Compute(ctx, r, seq)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if c.enabled {
		if c.values[key] == nil {
			c.values[key] = make(map[string]float64)
		}
		c.values[key][d.ID()] = v
	}
	c.mu.Unlock()
	return v, nil
}

// Cached reports whether a value is currently stored for (roi, descriptor).
func (c *Cache) Cached(d Descriptor, r roi.ROI) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[roiKey(r)][d.ID()]
	return ok
}

func roiKey(r roi.ROI) string {
	return fmt.Sprintf("%p", r)
}
