package scenario

import "github.com/wagmiprojects/shopify-api-js/pkg/catalog"

// Family groups keys that share a transition rule.
type Family int

// Scenario families.
const (
	FamilyStatic Family = iota
	FamilyRetries
	FamilyRetryThenFail
	FamilyRetryThenSuccess
	FamilyMaxRetries
	FamilyEndTest
)

var familyNames = map[Family]string{
	FamilyStatic:           "static",
	FamilyRetries:          "retries",
	FamilyRetryThenFail:    "retry-then-fail",
	FamilyRetryThenSuccess: "retry-then-success",
	FamilyMaxRetries:       "max-retries",
	FamilyEndTest:          "end-test",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown"
}

// Stateful reports whether responses in this family depend on the counter.
func (f Family) Stateful() bool {
	switch f {
	case FamilyRetries, FamilyRetryThenFail, FamilyRetryThenSuccess:
		return true
	default:
		return false
	}
}

// FamilyOf classifies key.
func FamilyOf(key catalog.Key) Family {
	switch key {
	case KeyRetries:
		return FamilyRetries
	case KeyRetryThenFail:
		return FamilyRetryThenFail
	case KeyRetryThenSuccess:
		return FamilyRetryThenSuccess
	case KeyMaxRetries:
		return FamilyMaxRetries
	case KeyEndTest:
		return FamilyEndTest
	default:
		return FamilyStatic
	}
}
