package testenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joeydtaylor/durable-starter/pkg/codec"
)

// Client posts request envelopes to {BaseURL}/{service}/{handler}.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// CallError is a non-2xx answer from the ingress.
type CallError struct {
	Status int
	Body   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call failed with status %d: %s", e.Status, e.Body)
}

type callEnvelope[I any] struct {
	Key     string `json:"key,omitempty"`
	Request I      `json:"request"`
}

type replyEnvelope[O any] struct {
	Response O `json:"response"`
}

// Call invokes an unkeyed handler and returns the unwrapped response.
func Call[I, O any](ctx context.Context, c *Client, service, handler string, req I) (O, error) {
	return do[I, O](ctx, c, service, handler, callEnvelope[I]{Request: req})
}

// KeyedCall is Call for keyed services.
func KeyedCall[I, O any](ctx context.Context, c *Client, service, handler, key string, req I) (O, error) {
	return do[I, O](ctx, c, service, handler, callEnvelope[I]{Key: key, Request: req})
}

func do[I, O any](ctx context.Context, c *Client, service, handler string, env callEnvelope[I]) (O, error) {
	var zero O
	body, err := codec.JSON.Marshal(env)
	if err != nil {
		return zero, err
	}
	u := c.BaseURL + "/" + url.PathEscape(service) + "/" + url.PathEscape(handler)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return zero, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return zero, &CallError{Status: res.StatusCode, Body: string(b)}
	}
	var out replyEnvelope[O]
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, fmt.Errorf("%s/%s: decode response: %w", service, handler, err)
	}
	return out.Response, nil
}
