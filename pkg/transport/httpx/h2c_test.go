package httpx

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"
)

func TestH2CServerSpeaksHTTP2(t *testing.T) {
	r := NewChi()
	r.Get("/proto", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Proto)
	}))

	ln, port, err := ListenEphemeral()
	require.NoError(t, err)
	srv := NewH2CServer("", r.Mux())
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	h2 := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}
	res, err := h2.Get(fmt.Sprintf("http://127.0.0.1:%d/proto", port))
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "HTTP/2.0", string(body))

	res1, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/proto", port))
	require.NoError(t, err)
	defer res1.Body.Close()
	body, _ = io.ReadAll(res1.Body)
	assert.Equal(t, "HTTP/1.1", string(body))
}

func TestRoutePatternAndNotFound(t *testing.T) {
	r := NewChi()
	r.Post("/{service}/{handler}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Pattern", RoutePattern(req))
		w.Header().Set("X-Service", Param(req, "service"))
	}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	ln, port, err := ListenEphemeral()
	require.NoError(t, err)
	srv := NewH2CServer("", r.Mux())
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	res, err := http.Post(fmt.Sprintf("http://127.0.0.1:%d/myservice/hello", port), "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "/{service}/{handler}", res.Header.Get("X-Pattern"))
	assert.Equal(t, "myservice", res.Header.Get("X-Service"))

	res, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/a/b/c", port))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTeapot, res.StatusCode)
}
