package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joeydtaylor/durable-starter/pkg/transport/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareLogsAccessLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))
	AddBodyLogPaths("/myservice/hello")

	var seen string
	h := (&Middleware{}).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		w.Header().Set(httpx.HeaderInvocationID, "inv-1")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/myservice/hello", strings.NewReader(`{"request":{"name":"Bob"}}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"request":{"name":"Bob"}}`, seen, "body must be restored for the handler")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "inv-1", fields["invocationId"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, `{"request":{"name":"Bob"}}`, fields["requestData"])
}

func TestShouldLogBody(t *testing.T) {
	AddBodyLogPaths("/a")
	body := []byte(`{}`)

	req := httptest.NewRequest(http.MethodPost, "/a", nil)
	req.Header.Set("Content-Type", "application/json")
	assert.True(t, shouldLogBody(req, body))

	req = httptest.NewRequest(http.MethodGet, "/a", nil)
	req.Header.Set("Content-Type", "application/json")
	assert.False(t, shouldLogBody(req, body))

	req = httptest.NewRequest(http.MethodPost, "/b", nil)
	req.Header.Set("Content-Type", "application/json")
	assert.False(t, shouldLogBody(req, body))

	req = httptest.NewRequest(http.MethodPost, "/a", nil)
	req.Header.Set("Content-Type", "text/plain")
	assert.False(t, shouldLogBody(req, body))

	req = httptest.NewRequest(http.MethodPut, "/a", nil)
	req.Header.Set("Content-Type", "application/json")
	assert.False(t, shouldLogBody(req, body))
}

func TestBodyLogPrefix(t *testing.T) {
	AddBodyLogPaths("/cart/*", "  ")
	assert.True(t, bodyLog.allowed("/cart/firstProductInCart"))
	assert.False(t, bodyLog.allowed("/carts/x"))
	assert.False(t, bodyLog.allowed(""))

	req := httptest.NewRequest(http.MethodPost, "/cart/x", nil)
	req.ContentLength = maxLoggedBody + 1
	assert.False(t, shouldPeek(req))
}
