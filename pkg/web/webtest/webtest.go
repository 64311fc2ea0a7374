// Package webtest serves fasthttp handlers on an in-memory listener for tests.
package webtest

import (
	"net"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// BaseURL is the URL clients use to reach a Serve'd handler
const BaseURL = "http://inmemory"

// Serve runs handler on an in-memory listener until the test ends and
// returns a client dialing that listener.
func Serve(t testing.TB, handler fasthttp.RequestHandler) *fasthttp.Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() {
		_ = srv.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	return &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}
}

// Do issues method+path with an optional JSON body and returns status and body
func Do(t testing.TB, c *fasthttp.Client, method, path string, body []byte, headers ...string) (int, []byte, *fasthttp.ResponseHeader) {
	t.Helper()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(BaseURL + path)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	if err := c.Do(req, resp); err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	out := append([]byte(nil), resp.Body()...)
	hdr := &fasthttp.ResponseHeader{}
	resp.Header.CopyTo(hdr)
	return resp.StatusCode(), out, hdr
}
