package requestlog

import "time"

// Entry is one served request.
type Entry struct {
	// ID is assigned by the store when empty.
	ID string `json:"id"`

	// Timestamp is assigned by the store when zero.
	Timestamp time.Time `json:"timestamp"`

	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remoteAddr,omitempty"`

	// UserAgent is the request's User-Agent, which header-case scenarios
	// are usually checking.
	UserAgent string `json:"userAgent,omitempty"`

	// Key is the scenario key the path resolved to.
	Key string `json:"key"`

	// Family is the scenario family name (static, retries, ...).
	Family string `json:"family"`

	ResponseStatus int `json:"responseStatus"`

	CounterBefore int `json:"counterBefore"`
	CounterAfter  int `json:"counterAfter"`

	// CounterReset is set when the post-response reset fired.
	CounterReset bool `json:"counterReset,omitempty"`

	// Error holds a write failure, if any.
	Error string `json:"error,omitempty"`
}
