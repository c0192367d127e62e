package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/net-super/api/internal/repositories"
	"github.com/net-super/api/internal/shipping"
)

// Calculator failure modes, in the order they are checked. Handlers translate
// them to wire codes: invalid input → 400, unknown product → 404, a listed
// product missing a numeric price → 500.
var (
	// ErrOrderCartEmpty indicates the cart had no lines.
	ErrOrderCartEmpty = errors.New("order calculator: cart is empty")
	// ErrOrderInvalidLine indicates a line with a blank product id or non-positive quantity.
	ErrOrderInvalidLine = errors.New("order calculator: invalid cart line")
	// ErrOrderProductNotFound indicates a line references a product that does not exist.
	ErrOrderProductNotFound = errors.New("order calculator: product not found")
	// ErrOrderPriceUnavailable indicates a listed product document has no
	// numeric price field. An explicit zero price is fine and contributes
	// nothing to the subtotal.
	ErrOrderPriceUnavailable = errors.New("order calculator: product price unavailable")
	// ErrOrderInvalidSubtotal indicates the computed subtotal was not positive.
	ErrOrderInvalidSubtotal = errors.New("order calculator: subtotal must be positive")
	// ErrOrderUnknownDestination indicates the destination prefecture resolved to no region.
	ErrOrderUnknownDestination = errors.New("order calculator: unknown destination")
)

// ErrOrderUnavailable indicates the calculator could not reach the product store.
var ErrOrderUnavailable = errors.New("order calculator: unavailable")

// OrderCalculatorDeps wires the product store and shipping table.
type OrderCalculatorDeps struct {
	Products repositories.ProductRepository
	Clock    func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

type orderCalculator struct {
	products repositories.ProductRepository
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)
}

var _ OrderCalculator = (*orderCalculator)(nil)

// NewOrderCalculator constructs the authoritative order total calculator.
// Unit prices always come from the product store; amounts supplied by the
// client are ignored.
func NewOrderCalculator(deps OrderCalculatorDeps) (OrderCalculator, error) {
	if deps.Products == nil {
		return nil, errors.New("order calculator: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderCalculator{
		products: deps.Products,
		now:      func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

// ComputeTotal validates the cart, re-prices every line from the product
// store, and adds the destination shipping fee. Failures are reported in a
// fixed order so a cart with several problems always surfaces the same one.
func (c *orderCalculator) ComputeTotal(ctx context.Context, lines []CartLine, prefecture string) (OrderTotal, error) {
	if c == nil || c.products == nil {
		return OrderTotal{}, ErrOrderUnavailable
	}

	if len(lines) == 0 {
		return OrderTotal{}, ErrOrderCartEmpty
	}
	ids := make([]string, 0, len(lines))
	for i, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" || line.Quantity <= 0 {
			return OrderTotal{}, fmt.Errorf("%w: line %d", ErrOrderInvalidLine, i)
		}
		ids = append(ids, id)
	}

	products, err := c.products.FindMany(ctx, ids)
	if err != nil {
		c.logger(ctx, "order.calculator.lookup_failed", map[string]any{
			"lineCount": len(lines),
			"error":     err.Error(),
		})
		return OrderTotal{}, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}

	var subtotal int64
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return OrderTotal{}, fmt.Errorf("%w: %s", ErrOrderProductNotFound, id)
		}
		if !product.HasPrice() {
			return OrderTotal{}, fmt.Errorf("%w: %s", ErrOrderPriceUnavailable, id)
		}
	}
	for i, line := range lines {
		subtotal += products[ids[i]].Price * line.Quantity
	}
	if subtotal <= 0 {
		return OrderTotal{}, ErrOrderInvalidSubtotal
	}

	fee, ok := shipping.ResolveFee(prefecture)
	if !ok {
		return OrderTotal{}, fmt.Errorf("%w: %q", ErrOrderUnknownDestination, strings.TrimSpace(prefecture))
	}

	total := OrderTotal{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal + fee,
	}
	c.logger(ctx, "order.calculator.total", map[string]any{
		"subtotal":    total.Subtotal,
		"shippingFee": total.ShippingFee,
		"total":       total.Total,
	})
	return total, nil
}
