package requestlog

// Logger is the minimal sink the responder writes to.
type Logger interface {
	Log(entry *Entry)
}

// Store is a queryable Logger.
type Store interface {
	Logger

	// Get retrieves an entry by ID, or nil.
	Get(id string) *Entry

	// List returns entries oldest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries held.
	Count() int
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Method     string
	Key        string
	Family     string
	StatusCode int

	// Limit caps the result size. Applied after Offset.
	Limit int

	// Offset skips leading entries.
	Offset int
}
