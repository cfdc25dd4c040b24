package catalog

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
)

// Key identifies a scenario. It is the last path segment of /url/path/{key}.
type Key string

// Built-in keys.
const (
	KeySuccess             Key = "200"
	KeyCustomHeader        Key = "custom"
	KeyLowercaseUA         Key = "lowercaseua"
	KeyUppercaseUA         Key = "uppercaseua"
	KeyContextUA           Key = "contextua"
	KeyContextAndHeadersUA Key = "contextandheadersua"
	KeyDeprecatedGet       Key = "deprecatedget"
	KeyDeprecatedPost      Key = "deprecatedpost"
	KeyForbidden           Key = "403"
	KeyNotFound            Key = "404"
	KeyRateLimited         Key = "429"
	KeyWait                Key = "wait"
	KeyServerError         Key = "500"
	KeyError               Key = "error"
	KeyDetailedError       Key = "detailederror"
)

// Header values shared by several built-in entries.
const (
	ErrorStatusText  = "Did not work"
	RequestIDHeader  = "x-request-id"
	RequestIDValue   = "Request id header"
	DeprecatedHeader = "X-Shopify-API-Deprecated-Reason"
	DeprecatedReason = "This API endpoint has been deprecated"

	// RetryAfterSeconds is kept small so client backoff tests do not stall.
	RetryAfterSeconds = "0.05"

	ContextAgent = "Context Agent"
	HeadersAgent = "Headers Agent"

	// UserAgentSeparator joins caller-supplied and context-derived agents.
	UserAgentSeparator = " | "
)

var keyPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// ValidKey reports whether k can be addressed through /url/path/{key}.
func ValidKey(k Key) bool {
	return keyPattern.MatchString(string(k))
}

// Header is a single response header. Name is written byte-for-byte.
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Response is a canned HTTP response.
type Response struct {
	StatusCode int      `json:"statusCode"`
	StatusText string   `json:"statusText"`
	Headers    []Header `json:"headers,omitempty"`
	Body       string   `json:"body"`
}

// Header returns the value of the first header whose name matches exactly.
func (r Response) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

func (r Response) clone() Response {
	if r.Headers != nil {
		r.Headers = append([]Header(nil), r.Headers...)
	}
	return r
}

// Catalog is an immutable key to Response table.
type Catalog struct {
	entries map[Key]Response
}

// Lookup returns the response for key, or the plain success response when
// the key is unknown.
func (c *Catalog) Lookup(key Key) Response {
	if r, ok := c.entries[key]; ok {
		return r.clone()
	}
	return c.entries[KeySuccess].clone()
}

// Has reports whether key has its own entry.
func (c *Catalog) Has(key Key) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys returns all keys in sorted order.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// With returns a new catalog containing the receiver's entries with the
// overlay's entries added or replacing them.
func (c *Catalog) With(overlay map[Key]Response) *Catalog {
	entries := make(map[Key]Response, len(c.entries)+len(overlay))
	for k, r := range c.entries {
		entries[k] = r
	}
	for k, r := range overlay {
		entries[k] = r.clone()
	}
	return &Catalog{entries: entries}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	success := jsonBody(map[string]any{"message": "Your HTTP request was successful!"})
	failure := jsonBody(map[string]any{"errors": "Something went wrong!"})
	empty := jsonBody(map[string]any{})

	ok := func(headers ...Header) Response {
		return Response{StatusCode: http.StatusOK, StatusText: "OK", Headers: headers, Body: success}
	}
	deprecated := Header{Name: DeprecatedHeader, Value: DeprecatedReason}
	requestID := Header{Name: RequestIDHeader, Value: RequestIDValue}

	return &Catalog{entries: map[Key]Response{
		KeySuccess:             ok(),
		KeyCustomHeader:        ok(Header{Name: "X-Not-A-Real-Header", Value: "some_value"}),
		KeyLowercaseUA:         ok(Header{Name: "user-agent", Value: "My lowercase agent"}),
		KeyUppercaseUA:         ok(Header{Name: "User-Agent", Value: "My agent"}),
		KeyContextUA:           ok(Header{Name: "User-Agent", Value: ContextAgent}),
		KeyContextAndHeadersUA: ok(Header{Name: "User-Agent", Value: HeadersAgent + UserAgentSeparator + ContextAgent}),
		KeyDeprecatedGet: {
			StatusCode: http.StatusOK,
			StatusText: "OK",
			Headers:    []Header{deprecated},
			Body:       jsonBody(map[string]any{"message": "Some deprecated request"}),
		},
		KeyDeprecatedPost: {
			StatusCode: http.StatusOK,
			StatusText: "OK",
			Headers:    []Header{deprecated},
			Body: jsonBody(struct {
				Message string         `json:"message"`
				Body    map[string]any `json:"body"`
			}{
				Message: "Some deprecated post request",
				Body:    map[string]any{"query": "some query"},
			}),
		},
		KeyForbidden: {
			StatusCode: http.StatusForbidden,
			StatusText: ErrorStatusText,
			Headers:    []Header{requestID},
			Body:       failure,
		},
		KeyNotFound: {
			StatusCode: http.StatusNotFound,
			StatusText: ErrorStatusText,
			Body:       empty,
		},
		KeyRateLimited: {
			StatusCode: http.StatusTooManyRequests,
			StatusText: ErrorStatusText,
			Headers:    []Header{requestID},
			Body:       failure,
		},
		KeyWait: {
			StatusCode: http.StatusTooManyRequests,
			StatusText: ErrorStatusText,
			Headers:    []Header{requestID, {Name: "Retry-After", Value: RetryAfterSeconds}},
			Body:       failure,
		},
		KeyServerError: {
			StatusCode: http.StatusInternalServerError,
			StatusText: ErrorStatusText,
			Headers:    []Header{requestID},
			Body:       empty,
		},
		KeyError: {
			StatusCode: http.StatusInternalServerError,
			StatusText: ErrorStatusText,
			Body:       jsonBody(map[string]any{"errors": "Something went wrong"}),
		},
		KeyDetailedError: {
			StatusCode: http.StatusInternalServerError,
			StatusText: ErrorStatusText,
			Body: jsonBody(map[string]any{
				"errors": struct {
					Title       string `json:"title"`
					Description string `json:"description"`
				}{"Invalid title", "Invalid description"},
			}),
		},
	}}
}

func jsonBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic("catalog: unencodable body: " + err.Error())
	}
	return string(b)
}
