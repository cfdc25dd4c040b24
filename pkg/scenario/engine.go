package scenario

import (
	"sync"

	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
)

// retriesLimit is how many 429s a retries sequence emits before succeeding.
// It is also the counter value the post-response reset watches for.
const retriesLimit = 2

// Counter is the retry counter shared by every stateful family.
//
// A Counter is not safe for concurrent use on its own. The Engine that owns
// it serializes access.
type Counter struct {
	n int
}

// Value returns the current count.
func (c *Counter) Value() int { return c.n }

// Inc adds one.
func (c *Counter) Inc() { c.n++ }

// Set overwrites the count.
func (c *Counter) Set(n int) { c.n = n }

// Reset sets the count to zero.
func (c *Counter) Reset() { c.n = 0 }

// Decision is the outcome of one Engine.Respond call.
type Decision struct {
	Key           catalog.Key
	Family        Family
	Response      catalog.Response
	CounterBefore int
	CounterAfter  int
}

// Engine selects responses and owns the shared Counter.
//
// Respond and Settle are safe to call from multiple goroutines, but the
// scenario sequences themselves assume requests arrive one at a time.
// Overlapping stateful sequences corrupt each other through the shared
// counter.
type Engine struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	counter Counter
}

// NewEngine creates an engine over cat. A nil catalog means catalog.Default().
func NewEngine(cat *catalog.Catalog) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Engine{catalog: cat}
}

// Catalog returns the catalog the engine reads from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Respond picks the response for key and advances the counter.
//
// Rules, first match wins:
//
//	retries           counter < 2   429, counter++
//	retries           counter >= 2  success
//	retrythenfail     counter == 0  500, counter = 1
//	retrythenfail     otherwise     403, counter = 0
//	retrythensuccess  counter == 0  wait (429 + Retry-After), counter = 1
//	retrythensuccess  otherwise     success, counter = 0
//	maxretries                      500
//	endtest                         success
//	anything else                   catalog entry for key
func (e *Engine) Respond(key catalog.Key) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := Decision{
		Key:           key,
		Family:        FamilyOf(key),
		CounterBefore: e.counter.Value(),
	}

	switch d.Family {
	case FamilyRetries:
		if e.counter.Value() < retriesLimit {
			d.Response = e.catalog.Lookup(catalog.KeyRateLimited)
			e.counter.Inc()
		} else {
			d.Response = e.catalog.Lookup(catalog.KeySuccess)
		}
	case FamilyRetryThenFail:
		if e.counter.Value() == 0 {
			d.Response = e.catalog.Lookup(catalog.KeyServerError)
			e.counter.Set(1)
		} else {
			d.Response = e.catalog.Lookup(catalog.KeyForbidden)
			e.counter.Reset()
		}
	case FamilyRetryThenSuccess:
		if e.counter.Value() == 0 {
			d.Response = e.catalog.Lookup(catalog.KeyWait)
			e.counter.Set(1)
		} else {
			d.Response = e.catalog.Lookup(catalog.KeySuccess)
			e.counter.Reset()
		}
	case FamilyMaxRetries:
		d.Response = e.catalog.Lookup(catalog.KeyServerError)
	case FamilyEndTest:
		d.Response = e.catalog.Lookup(catalog.KeySuccess)
	default:
		d.Response = e.catalog.Lookup(key)
	}

	d.CounterAfter = e.counter.Value()
	return d
}

// Settle runs the post-response reset: when key is not retries and the
// counter sits at 2, the counter goes back to 0. It reports whether the
// reset fired.
func (e *Engine) Settle(key catalog.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if FamilyOf(key) != FamilyRetries && e.counter.Value() == retriesLimit {
		e.counter.Reset()
		return true
	}
	return false
}

// Counter returns the current counter value.
func (e *Engine) Counter() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter.Value()
}

// Reset zeroes the counter. Test harnesses call it between suites.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.counter.Reset()
}
