package domain

import (
	"errors"
	"fmt"
	"time"
)

// Statuses assigned to new orders when the storefront omits them.
const (
	DefaultFulfillmentStatus = "ordered"
	DefaultPaymentStatus     = "paid"
)

// Order is a normalized business order. Identifiers are assigned by the
// storefront, not by this service. Totals and line counts are caller-supplied
// snapshots and are not recomputed here.
type Order struct {
	ID                       int64       `json:"id"`
	CustomerID               int64       `json:"customer_id"`
	CurrentLineItemsQuantity int         `json:"current_line_items_quantity"`
	CurrentTotalPrice        float64     `json:"current_total_price"`
	CurrentTotalTax          float64     `json:"current_total_tax"`
	CurrentTotalWeight       float64     `json:"current_total_weight"`
	FulfillmentStatus        string      `json:"fulfillment_status"`
	PaymentStatus            string      `json:"payment_status"`
	RefundStatus             *string     `json:"refund_status"`
	CreatedAt                time.Time   `json:"created_at"`
	CancelledAt              *time.Time  `json:"cancelled_at"`
	ClosedAt                 *time.Time  `json:"closed_at"`
	GCLID                    *string     `json:"gclid"`
	LandingPageURL           *string     `json:"landing_page_url"`
	Lines                    []OrderLine `json:"line_items"`
}

// OrderLine is one purchased item (or bundle entry) within an order.
// A non-empty ContractID marks a recurring/subscription line; LineItemGroup
// groups the lines of a bundle.
type OrderLine struct {
	ID                int64      `json:"id"`
	OrderID           int64      `json:"order_id"`
	SKU               string     `json:"sku"`
	Product           string     `json:"product"`
	Variant           string     `json:"variant"`
	LineItemGroup     *string    `json:"line_item_group"`
	ContractID        *string    `json:"contract_id"`
	CurrentPrice      float64    `json:"current_price"`
	CurrentTax        float64    `json:"current_tax"`
	CurrentTaxRate    string     `json:"current_tax_rate"`
	Quantity          int        `json:"quantity"`
	FulfillmentStatus *time.Time `json:"fulfillment_status"`
	RemainingQuantity *int       `json:"remaining_quantity"`
}

// Validate ensures the order and its lines adhere to business constraints.
func (o Order) Validate() error {
	if o.ID <= 0 {
		return errors.New("id must be positive")
	}
	if o.CustomerID <= 0 {
		return errors.New("customer_id must be positive")
	}
	if o.CurrentLineItemsQuantity < 0 {
		return errors.New("current_line_items_quantity must not be negative")
	}
	for i, line := range o.Lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks a single line.
func (l OrderLine) Validate() error {
	if l.ID <= 0 {
		return errors.New("id must be positive")
	}
	if l.SKU == "" {
		return errors.New("sku is required")
	}
	if l.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// IsCancelled reports whether the order has been soft-cancelled.
func (o Order) IsCancelled() bool {
	return o.CancelledAt != nil
}

// IsClosed reports whether the order has been closed.
func (o Order) IsClosed() bool {
	return o.ClosedAt != nil
}
