package testenv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joeydtaylor/durable-starter/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallAgainstRouter(t *testing.T) {
	srv := httptest.NewServer(core.BuildRouter(core.BuildDeps{Endpoint: testEndpoint(t)}))
	defer srv.Close()
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	_, err := Call[struct{}, string](ctx, c, "nope", "hello", struct{}{})
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Status)

	_, err = Call[struct{}, string](ctx, c, "counter", "whoami", struct{}{})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusBadRequest, ce.Status)
}

func TestCallRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := Call[int, int](context.Background(), NewClient(srv.URL), "a", "b", 1)
	assert.ErrorContains(t, err, "decode response")
}

func TestCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Call[int, int](context.Background(), NewClient(url), "a", "b", 1)
	require.Error(t, err)
	var ce *CallError
	assert.False(t, errors.As(err, &ce))
}
