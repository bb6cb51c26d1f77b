// Package spectrum implements the 2-D frequency transform and the cache that
// gates its inverse.
package spectrum

import "errors"

// ErrNoForwardResult is returned when an inverse transform is requested
// without a forward result to consume.
var ErrNoForwardResult = errors.New("no forward transform result")

// Cache records whether a forward transform result is available. The flag
// is set only by a verified forward transform and consumed exactly once
// by a successful inverse.
type Cache struct {
	hasForwardResult bool
}

// RecordForwardSuccess marks a forward result as available.
func (c *Cache) RecordForwardSuccess() {
	c.hasForwardResult = true
}

// Clear drops the forward result.
func (c *Cache) Clear() {
	c.hasForwardResult = false
}

// HasResult reports whether an inverse transform may run.
func (c *Cache) HasResult() bool {
	return c.hasForwardResult
}

// Require returns ErrNoForwardResult when no result is held.
func (c *Cache) Require() error {
	if !c.hasForwardResult {
		return ErrNoForwardResult
	}
	return nil
}

// Consume clears the flag. Call it only once the inverse transform guarded
// by Require has succeeded.
func (c *Cache) Consume() {
	c.hasForwardResult = false
}
