package myservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ItemID accepts both JSON numbers and strings.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n)
	return nil
}

func (id ItemID) String() string { return string(id) }

type CartItem struct {
	ID ItemID `json:"id"`
}

type Cart struct {
	Products []CartItem `json:"products"`
}

type Product struct {
	ID          ItemID `json:"id"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// Catalog is the external cart/product API firstProductInCart reads from.
type Catalog interface {
	Cart(ctx context.Context, cartID string) (Cart, error)
	Product(ctx context.Context, productID string) (Product, error)
}

// HTTPCatalog reads carts and products from a dummyjson-compatible API.
type HTTPCatalog struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPCatalog(baseURL string, timeout time.Duration) *HTTPCatalog {
	return &HTTPCatalog{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCatalog) Cart(ctx context.Context, cartID string) (Cart, error) {
	var cart Cart
	err := c.get(ctx, "/carts/"+url.PathEscape(cartID), &cart)
	return cart, err
}

func (c *HTTPCatalog) Product(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := c.get(ctx, "/products/"+url.PathEscape(productID), &p)
	return p, err
}

func (c *HTTPCatalog) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<12))
		return fmt.Errorf("GET %s: status %d: %s", path, res.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}
