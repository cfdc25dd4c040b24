package scenario

import (
	"regexp"

	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
)

// PathPrefix is the fixed prefix every scenario path starts with.
const PathPrefix = "/url/path/"

// Stateful and lifecycle keys. These have no catalog entry of their own.
const (
	KeyRetries          catalog.Key = "retries"
	KeyRetryThenFail    catalog.Key = "retrythenfail"
	KeyRetryThenSuccess catalog.Key = "retrythensuccess"
	KeyMaxRetries       catalog.Key = "maxretries"
	KeyEndTest          catalog.Key = "endtest"
)

var pathPattern = regexp.MustCompile(`^/url/path/([a-z0-9]*)$`)

// ExtractKey returns the {key} segment of /url/path/{key}. Paths that do
// not match yield catalog.KeySuccess. An empty segment yields "", which the
// catalog also resolves to success.
func ExtractKey(path string) catalog.Key {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return catalog.KeySuccess
	}
	return catalog.Key(m[1])
}

// Path builds the request path for key.
func Path(key catalog.Key) string {
	return PathPrefix + string(key)
}
