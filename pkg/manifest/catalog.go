package manifest

import (
	"errors"
	"strings"
)

// Catalog points firstProductInCart at the cart/product API.
type Catalog struct {
	BaseURL   string `toml:"base_url"`
	TimeoutMS int    `toml:"timeout_ms"`
}

func (c *Catalog) validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = "https://dummyjson.com"
	}
	if err := checkURL("catalog.base_url", c.BaseURL); err != nil {
		return err
	}
	if c.TimeoutMS < 0 {
		return errors.New("catalog.timeout_ms must be >= 0")
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 10_000
	}
	return nil
}
