// Package requestlog records what the fixture served.
//
// It is distinct from operational logging (log/slog). Each Entry captures the
// request line, the scenario key it resolved to, the status that went back,
// and the shared retry counter before and after, so a test harness can
// assert on the exact sequence a client produced.
//
//	store := requestlog.NewMemoryStore(1000)
//	store.Log(&requestlog.Entry{Method: "GET", Path: "/url/path/retries", Key: "retries"})
//	entries := store.List(&requestlog.Filter{Key: "retries"})
//
// This is a leaf package with no internal dependencies.
package requestlog
