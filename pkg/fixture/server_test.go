package fixture

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
	"github.com/wagmiprojects/shopify-api-js/pkg/requestlog"
	"github.com/wagmiprojects/shopify-api-js/pkg/scenario"
)

func startServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	srv := New(Config{Host: "127.0.0.1", Port: 0}, opts...)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec,noctx // test server URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// rawRequest sends a request over a bare connection and returns the
// unparsed response, so header case and reason phrase can be checked.
func rawRequest(t *testing.T, srv *Server, method string, key catalog.Key, body string) string {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	req := fmt.Sprintf("%s %s HTTP/1.1\r\nHost: fixture\r\nContent-Length: %d\r\n\r\n%s",
		method, scenario.Path(key), len(body), body)
	_, err = io.WriteString(conn, req)
	require.NoError(t, err)

	raw, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(raw)
}

func TestServer_StatefulSequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  catalog.Key
		want []int
	}{
		{scenario.KeyRetries, []int{429, 429, 200, 200}},
		{scenario.KeyRetryThenFail, []int{500, 403, 500, 403}},
		{scenario.KeyRetryThenSuccess, []int{429, 200, 429, 200}},
		{scenario.KeyMaxRetries, []int{500, 500, 500, 500, 500}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.key), func(t *testing.T) {
			t.Parallel()
			srv := startServer(t)

			got := make([]int, 0, len(tt.want))
			for range tt.want {
				resp, _ := get(t, srv.URL(tt.key))
				got = append(got, resp.StatusCode)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_RetryThenSuccessCarriesRetryAfter(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	resp, body := get(t, srv.URL(scenario.KeyRetryThenSuccess))
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64)
	require.NoError(t, err)
	assert.Greater(t, secs, 0.0)
	assert.Less(t, secs, 1.0)
	assert.JSONEq(t, `{"errors":"Something went wrong!"}`, body)

	resp, body = get(t, srv.URL(scenario.KeyRetryThenSuccess))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Your HTTP request was successful!"}`, body)
}

func TestServer_UnmatchedPathsSucceed(t *testing.T) {
	t.Parallel()
	srv := startServer(t)
	base := "http://" + hostForURL(srv.Addr())

	for _, path := range []string{"/", "/url/path", "/url/path/", "/url/path/UPPER", "/a/b/c", "/url/path/nosuch"} {
		for i := 0; i < 2; i++ {
			resp, body := get(t, base+path)
			assert.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
			assert.JSONEq(t, `{"message":"Your HTTP request was successful!"}`, body)
		}
	}
}

func TestServer_AnyMethod(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, "PURGE"} {
		req, err := http.NewRequestWithContext(context.Background(), method,
			srv.URL(catalog.KeyDeprecatedPost), strings.NewReader(`{"query":"some query"}`))
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode, method)
		assert.Equal(t, catalog.DeprecatedReason, resp.Header.Get(catalog.DeprecatedHeader))
		assert.JSONEq(t, `{"message":"Some deprecated post request","body":{"query":"some query"}}`, string(body))
	}
}

func TestServer_HeadOmitsBody(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	raw := rawRequest(t, srv, http.MethodHead, catalog.KeyForbidden, "")
	assert.True(t, strings.HasPrefix(raw, "HTTP/1.1 403 Did not work\r\n"))
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n"), "no body after headers: %q", raw)
}

func TestServer_VerbatimWire(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	tests := []struct {
		key        catalog.Key
		statusLine string
		header     string
	}{
		{catalog.KeyLowercaseUA, "HTTP/1.1 200 OK", "user-agent: My lowercase agent"},
		{catalog.KeyUppercaseUA, "HTTP/1.1 200 OK", "User-Agent: My agent"},
		{catalog.KeyContextUA, "HTTP/1.1 200 OK", "User-Agent: Context Agent"},
		{catalog.KeyContextAndHeadersUA, "HTTP/1.1 200 OK", "User-Agent: Headers Agent | Context Agent"},
		{catalog.KeyCustomHeader, "HTTP/1.1 200 OK", "X-Not-A-Real-Header: some_value"},
		{catalog.KeyForbidden, "HTTP/1.1 403 Did not work", "x-request-id: Request id header"},
		{catalog.KeyRateLimited, "HTTP/1.1 429 Did not work", "x-request-id: Request id header"},
		{catalog.KeyWait, "HTTP/1.1 429 Did not work", "Retry-After: 0.05"},
		{catalog.KeyNotFound, "HTTP/1.1 404 Did not work", "Content-Length: 2"},
		{catalog.KeyDeprecatedGet, "HTTP/1.1 200 OK", "X-Shopify-API-Deprecated-Reason: This API endpoint has been deprecated"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.key), func(t *testing.T) {
			t.Parallel()
			raw := rawRequest(t, srv, http.MethodGet, tt.key, "")

			head, body, found := strings.Cut(raw, "\r\n\r\n")
			require.True(t, found, "malformed response: %q", raw)

			lines := strings.Split(head, "\r\n")
			assert.Equal(t, tt.statusLine, lines[0])
			assert.Contains(t, lines[1:], tt.header)
			assert.NotContains(t, strings.ToLower(head), "content-type", "no implicit content type")
			assert.Equal(t, catalog.Default().Lookup(tt.key).Body, body)
		})
	}
}

func TestServer_DrainsRequestBody(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	payload := strings.Repeat("x", 64*1024)
	raw := rawRequest(t, srv, http.MethodPost, catalog.KeyDeprecatedPost, payload)

	resp, err := http.ReadResponse(bufio.NewReader(strings.NewReader(raw)), nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_EndTest(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	select {
	case <-srv.Done():
		t.Fatal("done before endtest")
	default:
	}

	resp, body := get(t, srv.URL(scenario.KeyEndTest))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Your HTTP request was successful!"}`, body)

	select {
	case <-srv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after endtest")
	}

	// A second endtest must not panic on the closed channel.
	resp, _ = get(t, srv.URL(scenario.KeyEndTest))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SharedCounterAcrossScenarios(t *testing.T) {
	t.Parallel()
	srv := startServer(t)

	status := func(key catalog.Key) int {
		resp, _ := get(t, srv.URL(key))
		return resp.StatusCode
	}

	assert.Equal(t, 429, status(scenario.KeyRetries))
	assert.Equal(t, 403, status(scenario.KeyRetryThenFail), "counter left at 1 by retries")
	assert.Equal(t, 429, status(scenario.KeyRetries))

	srv.Engine().Reset()
	assert.Equal(t, 429, status(scenario.KeyRetries))
	assert.Equal(t, 429, status(scenario.KeyRetries))
	assert.Equal(t, 2, srv.Engine().Counter())
	assert.Equal(t, 200, status(catalog.KeyCustomHeader))
	assert.Equal(t, 0, srv.Engine().Counter(), "post-response reset fired")
}

func TestServer_Journal(t *testing.T) {
	t.Parallel()
	store := requestlog.NewMemoryStore(10)
	srv := startServer(t, WithJournal(store))

	for i := 0; i < 3; i++ {
		get(t, srv.URL(scenario.KeyRetries))
	}
	get(t, srv.URL(catalog.KeyError))

	entries := store.List(nil)
	require.Len(t, entries, 4)

	assert.Equal(t, []int{429, 429, 200, 500}, []int{
		entries[0].ResponseStatus, entries[1].ResponseStatus,
		entries[2].ResponseStatus, entries[3].ResponseStatus,
	})
	assert.Equal(t, 0, entries[0].CounterBefore)
	assert.Equal(t, 1, entries[0].CounterAfter)
	assert.Equal(t, 2, entries[2].CounterAfter)
	assert.Equal(t, "retries", entries[0].Family)

	last := entries[3]
	assert.Equal(t, "error", last.Key)
	assert.Equal(t, "static", last.Family)
	assert.True(t, last.CounterReset)
	assert.Equal(t, http.MethodGet, last.Method)
	assert.Equal(t, "/url/path/error", last.Path)
	assert.NotEmpty(t, last.ID)
	assert.Contains(t, last.UserAgent, "Go-http-client")
}

func TestServer_WithCatalog(t *testing.T) {
	t.Parallel()

	cat := catalog.Default().With(map[catalog.Key]catalog.Response{
		"teapot": {
			StatusCode: http.StatusTeapot,
			StatusText: "Short and stout",
			Headers:    []catalog.Header{{Name: "x-brew", Value: "earl grey"}},
			Body:       `{"message":"tip me over"}`,
		},
	})
	srv := startServer(t, WithCatalog(cat))

	raw := rawRequest(t, srv, http.MethodGet, "teapot", "")
	assert.True(t, strings.HasPrefix(raw, "HTTP/1.1 418 Short and stout\r\n"))
	assert.Contains(t, raw, "\r\nx-brew: earl grey\r\n")
	assert.True(t, strings.HasSuffix(raw, `{"message":"tip me over"}`))
}

func TestServer_Lifecycle(t *testing.T) {
	t.Parallel()

	srv := New(Config{Host: "127.0.0.1"})
	assert.Equal(t, "", srv.Addr())
	assert.Equal(t, 0, srv.Port())
	assert.ErrorIs(t, srv.Stop(context.Background()), ErrNotRunning)

	require.NoError(t, srv.Start())
	assert.NotZero(t, srv.Port())
	assert.ErrorIs(t, srv.Start(), ErrAlreadyRunning)

	require.NoError(t, srv.Stop(context.Background()))
	assert.ErrorIs(t, srv.Stop(context.Background()), ErrNotRunning)

	// Restart on a fresh port.
	require.NoError(t, srv.Start())
	resp, _ := get(t, srv.URL(catalog.KeySuccess))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, srv.Stop(context.Background()))
}

func TestServer_PortInUse(t *testing.T) {
	t.Parallel()

	first := startServer(t)
	second := New(Config{Host: "127.0.0.1", Port: first.Port()})

	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestWriteResponse_Fallback(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/url/path/lowercaseua", nil)
	resp := catalog.Default().Lookup(catalog.KeyLowercaseUA)

	require.NoError(t, writeResponse(rec, req, resp))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"My lowercase agent"}, rec.Header()["user-agent"])
	assert.Empty(t, rec.Header()["User-Agent"])
	assert.Equal(t, resp.Body, rec.Body.String())
}

func TestWriteResponse_FallbackHead(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodHead, "/url/path/500", nil)

	require.NoError(t, writeResponse(rec, req, catalog.Default().Lookup(catalog.KeyServerError)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []string{"Request id header"}, rec.Header()["x-request-id"])
}

func TestWriteRaw(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	resp := catalog.Response{
		StatusCode: 500,
		StatusText: "Did not work",
		Headers:    []catalog.Header{{Name: "b-second", Value: "2"}, {Name: "A-First", Value: "1"}},
		Body:       "{}",
	}

	require.NoError(t, writeRaw(bw, http.MethodGet, resp))
	assert.Equal(t,
		"HTTP/1.1 500 Did not work\r\nb-second: 2\r\nA-First: 1\r\nContent-Length: 2\r\nConnection: close\r\n\r\n{}",
		buf.String())
}

func TestHostForURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "127.0.0.1:3000", hostForURL("[::]:3000"))
	assert.Equal(t, "127.0.0.1:3000", hostForURL("0.0.0.0:3000"))
	assert.Equal(t, "127.0.0.1:3000", hostForURL(":3000"))
	assert.Equal(t, "10.0.0.1:80", hostForURL("10.0.0.1:80"))
	assert.Equal(t, "garbage", hostForURL("garbage"))
}
