// Package scenario turns request paths into scenario keys and decides which
// catalog response each request receives.
//
// Most keys are static: the response is the catalog entry for that key.
// A handful are stateful and walk a short sequence across requests:
//
//	retries           429, 429, then 200 until the counter is reset
//	retrythenfail     500, then 403 (sequence complete, counter reset)
//	retrythensuccess  429 with Retry-After, then 200 (counter reset)
//	maxretries        500 forever
//
// All stateful families share one Counter. Running two stateful sequences at
// the same time against one Engine interleaves their counter updates and
// produces sequences neither family would produce alone. Callers must run
// stateful scenarios one after another.
//
// After the response has been written the caller must invoke Engine.Settle,
// which resets a counter left at 2 by an unfinished retries sequence when the
// next request belongs to another scenario.
package scenario
