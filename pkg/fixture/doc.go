// Package fixture serves catalog responses over HTTP.
//
// A Server accepts any method on any path. Paths of the form
// /url/path/{key} select a scenario; everything else gets the plain success
// response. Responses are written verbatim: the catalog's reason phrase goes
// on the status line, header names keep their authored case, and nothing is
// added except Content-Length and Connection: close.
//
// Typical test usage:
//
//	srv := fixture.New(fixture.Config{Port: 0})
//	if err := srv.Start(); err != nil {
//	    t.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
//
//	resp, _ := http.Get(srv.URL("retries"))
//
// A request for the endtest key is answered with success and then closes
// Done. The CLI exits the process when that happens; library users call
// Stop themselves.
//
// Stateful scenarios share one counter across the whole Server. Run them
// sequentially.
package fixture
