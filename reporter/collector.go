package reporter

import "sync"

// Collector is a Reporter that records every error and warning it receives
// and never aborts. It is the reporter to use when the caller wants the
// complete list of problems in a document rather than just the first one.
type Collector struct {
	mu       sync.Mutex
	errs     []ErrorWithPos
	warnings []ErrorWithPos
}

func (c *Collector) Error(err ErrorWithPos) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	return nil
}

func (c *Collector) Warning(err ErrorWithPos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, err)
}

// Errors returns the collected errors in the order they were reported.
func (c *Collector) Errors() []ErrorWithPos {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// Warnings returns the collected warnings in the order they were reported.
func (c *Collector) Warnings() []ErrorWithPos {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

var _ Reporter = (*Collector)(nil)
