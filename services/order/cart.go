package order

import "fmt"

// CartMessage is the notice shown after item was added to the cart.
func CartMessage(item *OrderItem) string {
	label := item.PurchasedEntityLabel()
	if item.Bundle == PayToPublish {
		label = "Listing option for " + label
	}
	return fmt.Sprintf("%s added to your cart.", label)
}
