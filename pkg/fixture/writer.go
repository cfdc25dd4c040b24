package fixture

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
)

// maxDrain bounds how much of an unread request body is consumed before the
// connection is taken over.
const maxDrain = 1 << 20

// writeResponse sends resp as-is. It takes over the connection when the
// ResponseWriter allows it so the reason phrase and header case survive.
// Otherwise it falls back to the standard writer, which keeps header case
// but always uses the standard reason phrase.
func writeResponse(w http.ResponseWriter, r *http.Request, resp catalog.Response) error {
	hj, ok := w.(http.Hijacker)
	if !ok {
		return writeStandard(w, r, resp)
	}

	// Unread body bytes left in the socket turn the close into a reset,
	// which clients see as a failed request.
	if r.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxDrain))
	}

	conn, rw, err := hj.Hijack()
	if err != nil {
		return writeStandard(w, r, resp)
	}
	defer func() { _ = conn.Close() }()

	if err := writeRaw(rw.Writer, r.Method, resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// writeRaw writes an HTTP/1.1 response to bw and flushes it.
func writeRaw(bw *bufio.Writer, method string, resp catalog.Response) error {
	fmt.Fprintf(bw, "HTTP/1.1 %03d %s\r\n", resp.StatusCode, resp.StatusText)
	for _, h := range resp.Headers {
		fmt.Fprintf(bw, "%s: %s\r\n", h.Name, h.Value)
	}
	fmt.Fprintf(bw, "Content-Length: %d\r\n", len(resp.Body))
	_, _ = bw.WriteString("Connection: close\r\n\r\n")
	if method != http.MethodHead {
		_, _ = bw.WriteString(resp.Body)
	}
	return bw.Flush()
}

func writeStandard(w http.ResponseWriter, r *http.Request, resp catalog.Response) error {
	header := w.Header()
	for _, h := range resp.Headers {
		// Direct map access skips canonicalization.
		header[h.Name] = append(header[h.Name], h.Value)
	}
	header["Content-Length"] = []string{strconv.Itoa(len(resp.Body))}
	w.WriteHeader(resp.StatusCode)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := io.WriteString(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
