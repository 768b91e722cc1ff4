// Package admin talks to the runtime's admin API.
package admin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joeydtaylor/durable-starter/pkg/codec"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// RegistrationError is a non-2xx answer from POST /deployments.
type RegistrationError struct {
	Status int
	Body   string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("Error %d during registration: %s", e.Status, e.Body)
}

type deployment struct {
	URI   string `json:"uri"`
	Force bool   `json:"force,omitempty"`
}

// RegisterDeployment asks the runtime to discover the endpoint at uri.
func (c *Client) RegisterDeployment(ctx context.Context, uri string, force bool) error {
	body, err := codec.JSON.Marshal(deployment{URI: uri, Force: force})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/deployments", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("register %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return &RegistrationError{Status: res.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// Healthy returns nil when GET {base}/health answers 2xx.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("admin health status %d", res.StatusCode)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
