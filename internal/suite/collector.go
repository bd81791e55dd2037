package suite

import (
	"errors"
	"sync"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

var (
	// ErrAlreadyFinalized is returned by a second call to Collector.Finalize.
	ErrAlreadyFinalized = errors.New("collector already finalized")
	// ErrNoResults is returned by Finalize when nothing was collected; the flush is skipped.
	ErrNoResults = errors.New("no results collected")
)

// Collector accumulates results in execution order for a single run.
type Collector struct {
	results   []domain.Result
	mu        sync.Mutex
	finalized bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{results: make([]domain.Result, 0)}
}

// Add appends a result.
func (c *Collector) Add(r domain.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Results returns a copy of the collected results in insertion order.
func (c *Collector) Results() []domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Result, len(c.results))
	copy(out, c.results)
	return out
}

// Len returns the number of collected results.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Finalize hands the collected results to flush exactly once.
func (c *Collector) Finalize(flush func([]domain.Result) error) error {
	c.mu.Lock()
	if c.finalized {
		c.mu.Unlock()
		return ErrAlreadyFinalized
	}
	c.finalized = true
	results := make([]domain.Result, len(c.results))
	copy(results, c.results)
	c.mu.Unlock()

	if len(results) == 0 {
		return ErrNoResults
	}
	return flush(results)
}
