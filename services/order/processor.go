package order

import (
	"context"
	"fmt"

	"smallbiznis-paytopublish/pkg/messenger"
)

// Processor mutates an order during recalculation.
type Processor interface {
	Process(ctx context.Context, o *Order) error
}

type ProcessorFunc func(ctx context.Context, o *Order) error

func (f ProcessorFunc) Process(ctx context.Context, o *Order) error { return f(ctx, o) }

// Chain runs processors in order and stops at the first error.
type Chain []Processor

func (c Chain) Process(ctx context.Context, o *Order) error {
	for _, p := range c {
		if err := p.Process(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// NewChain returns the processors run on every order recalculation.
func NewChain(guard *QuantityGuard) Chain {
	return Chain{guard}
}

// QuantityGuard keeps licensable items at a quantity of one. Pay to publish
// items are left alone; their per-listing uniqueness is enforced when they
// are added to the cart.
type QuantityGuard struct {
	messenger messenger.Messenger
}

func NewQuantityGuard(m messenger.Messenger) *QuantityGuard {
	return &QuantityGuard{messenger: m}
}

func (g *QuantityGuard) Process(ctx context.Context, o *Order) error {
	for _, item := range o.Items {
		if !item.Bundle.HasLicenseField() || item.Bundle == PayToPublish {
			continue
		}

		if item.Quantity <= 1 {
			continue
		}

		item.Quantity = 1

		// Shown both when increasing the quantity of a license already in
		// the cart and when adding more than one at once.
		if label := item.PurchasedEntityLabel(); label != "" {
			g.messenger.Add(ctx, fmt.Sprintf("You may only have one of %s in your cart.", label), messenger.Error)
		}
	}

	return nil
}
