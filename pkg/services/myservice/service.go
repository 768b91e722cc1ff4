// Package myservice holds the example handlers: a greeting, a two-step
// catalog lookup wrapped in recorded effects, and a sleep loop.
package myservice

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/joeydtaylor/durable-starter/pkg/core"
	"github.com/joeydtaylor/durable-starter/pkg/durable"
	"github.com/joeydtaylor/durable-starter/pkg/manifest"
)

const Name = "myservice"

type HelloRequest struct {
	Name string `json:"name"`
}

type CartRequest struct {
	CartID string `json:"cartId"`
}

type ProductDescription struct {
	Description *string `json:"description,omitempty"`
}

type SleepRequest struct {
	Duration float64 `json:"duration"` // milliseconds
	Times    int     `json:"times"`
}

// NewEndpoint binds the service under endpoint.service_name with an HTTP
// catalog from the [catalog] section.
func NewEndpoint(m manifest.Config) (*core.Endpoint, error) {
	catalog := NewHTTPCatalog(m.Catalog.BaseURL, time.Duration(m.Catalog.TimeoutMS)*time.Millisecond)
	name := m.Endpoint.ServiceName
	if name == "" {
		name = Name
	}
	e := core.NewEndpoint()
	if err := e.Bind(name, New(catalog)); err != nil {
		return nil, err
	}
	return e, nil
}

// New builds the service. catalog backs firstProductInCart.
func New(catalog Catalog) *core.Service {
	h := handlers{catalog: catalog}
	return core.MustService(
		core.NewHandler("hello", h.hello),
		core.NewHandler("firstProductInCart", h.firstProductInCart),
		core.NewHandler("sleepyHandler", h.sleepyHandler),
	)
}

type handlers struct {
	catalog Catalog
}

func (handlers) hello(_ durable.Context, req HelloRequest) (string, error) {
	return "Hello " + req.Name + "!", nil
}

// firstProductInCart describes the LAST item of the cart: the item list is
// popped from the end.
func (h handlers) firstProductInCart(ctx durable.Context, req CartRequest) (ProductDescription, error) {
	cart, err := durable.Run(ctx, "fetch cart", func(c context.Context) (Cart, error) {
		return h.catalog.Cart(c, req.CartID)
	})
	if err != nil {
		return ProductDescription{}, err
	}

	if len(cart.Products) == 0 {
		return ProductDescription{}, nil
	}
	item := cart.Products[len(cart.Products)-1]

	product, err := durable.Run(ctx, "fetch product", func(c context.Context) (Product, error) {
		return h.catalog.Product(c, item.ID.String())
	})
	if err != nil {
		return ProductDescription{}, err
	}
	return ProductDescription{Description: &product.Description}, nil
}

func (handlers) sleepyHandler(ctx durable.Context, req SleepRequest) (string, error) {
	d := time.Duration(req.Duration * float64(time.Millisecond))
	for i := 0; i < req.Times; i++ {
		ctx.Log().Info(fmt.Sprintf("About to sleep at the %d-th time. Zzz....", i))
		if err := ctx.Sleep(d); err != nil {
			return "", err
		}
		ctx.Log().Info("Done sleeping!")
	}
	total := strconv.FormatFloat(req.Duration*float64(req.Times), 'f', -1, 64)
	return "slept for a total of " + total + " milliseconds", nil
}
