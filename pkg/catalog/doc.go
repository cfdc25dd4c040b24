// Package catalog holds the canned responses served by the retry fixture.
//
// A Catalog maps a scenario key (the last segment of /url/path/{key}) to a
// Response: status code, reason phrase, headers and body. The built-in table
// returned by Default covers plain successes, header-case variants,
// deprecation notices, and the 403/404/429/500 error shapes that HTTP client
// tests assert against.
//
// Entries are immutable once a catalog is built. Lookup and Keys return
// copies, and With produces a new catalog rather than modifying the receiver.
//
// # Overlay files
//
// Extra or replacement entries can be loaded from JSON or YAML:
//
//	overlay, err := catalog.LoadFile("scenarios.yaml")
//	if err != nil {
//	    return err
//	}
//	cat := catalog.Default().With(overlay)
//
// Header names are written exactly as authored. Some built-in entries use
// lowercase or mixed-case names on purpose.
package catalog
