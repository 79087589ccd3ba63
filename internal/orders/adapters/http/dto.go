package http

import (
	"time"

	"github.com/shopmate/ingest/internal/orders/domain"
)

// OrderCreate is the inbound contract for a storefront-validated order.
// Identifiers are assigned by the storefront; timestamps default server-side
// when omitted.
type OrderCreate struct {
	ID                       int64             `json:"id"`
	CustomerID               int64             `json:"customer_id"`
	CurrentLineItemsQuantity int               `json:"current_line_items_quantity"`
	CurrentTotalPrice        float64           `json:"current_total_price"`
	CurrentTotalTax          float64           `json:"current_total_tax"`
	CurrentTotalWeight       float64           `json:"current_total_weight"`
	FulfillmentStatus        string            `json:"fulfillment_status"`
	PaymentStatus            string            `json:"payment_status"`
	RefundStatus             *string           `json:"refund_status,omitempty"`
	CreatedAt                *time.Time        `json:"created_at,omitempty"`
	CancelledAt              *time.Time        `json:"cancelled_at,omitempty"`
	ClosedAt                 *time.Time        `json:"closed_at,omitempty"`
	GCLID                    *string           `json:"gclid,omitempty"`
	LandingPageURL           *string           `json:"landing_page_url,omitempty"`
	LineItems                []OrderLineCreate `json:"line_items"`
}

type OrderLineCreate struct {
	ID                int64      `json:"id"`
	SKU               string     `json:"sku"`
	Product           string     `json:"product"`
	Variant           string     `json:"variant"`
	LineItemGroup     *string    `json:"line_item_group,omitempty"`
	ContractID        *string    `json:"contract_id,omitempty"`
	CurrentPrice      float64    `json:"current_price"`
	CurrentTax        float64    `json:"current_tax"`
	CurrentTaxRate    string     `json:"current_tax_rate"`
	Quantity          int        `json:"quantity"`
	FulfillmentStatus *time.Time `json:"fulfillment_status,omitempty"`
	RemainingQuantity *int       `json:"remaining_quantity,omitempty"`
}

// OrderOut is the outbound contract, decoupled from the storage row.
type OrderOut struct {
	ID                       int64          `json:"id"`
	CustomerID               int64          `json:"customer_id"`
	CurrentLineItemsQuantity int            `json:"current_line_items_quantity"`
	CurrentTotalPrice        float64        `json:"current_total_price"`
	CurrentTotalTax          float64        `json:"current_total_tax"`
	CurrentTotalWeight       float64        `json:"current_total_weight"`
	FulfillmentStatus        string         `json:"fulfillment_status"`
	PaymentStatus            string         `json:"payment_status"`
	RefundStatus             *string        `json:"refund_status"`
	CreatedAt                time.Time      `json:"created_at"`
	CancelledAt              *time.Time     `json:"cancelled_at"`
	ClosedAt                 *time.Time     `json:"closed_at"`
	GCLID                    *string        `json:"gclid"`
	LandingPageURL           *string        `json:"landing_page_url"`
	LineItems                []OrderLineOut `json:"line_items"`
}

type OrderLineOut struct {
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

func (in OrderCreate) toDomain() domain.Order {
	order := domain.Order{
		ID:                       in.ID,
		CustomerID:               in.CustomerID,
		CurrentLineItemsQuantity: in.CurrentLineItemsQuantity,
		CurrentTotalPrice:        in.CurrentTotalPrice,
		CurrentTotalTax:          in.CurrentTotalTax,
		CurrentTotalWeight:       in.CurrentTotalWeight,
		FulfillmentStatus:        in.FulfillmentStatus,
		PaymentStatus:            in.PaymentStatus,
		RefundStatus:             in.RefundStatus,
		CancelledAt:              in.CancelledAt,
		ClosedAt:                 in.ClosedAt,
		GCLID:                    in.GCLID,
		LandingPageURL:           in.LandingPageURL,
	}
	if in.CreatedAt != nil {
		order.CreatedAt = *in.CreatedAt
	}
	for _, line := range in.LineItems {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:                line.ID,
			OrderID:           in.ID,
			SKU:               line.SKU,
			Product:           line.Product,
			Variant:           line.Variant,
			LineItemGroup:     line.LineItemGroup,
			ContractID:        line.ContractID,
			CurrentPrice:      line.CurrentPrice,
			CurrentTax:        line.CurrentTax,
			CurrentTaxRate:    line.CurrentTaxRate,
			Quantity:          line.Quantity,
			FulfillmentStatus: line.FulfillmentStatus,
			RemainingQuantity: line.RemainingQuantity,
		})
	}
	return order
}

func toOrderOut(order *domain.Order) OrderOut {
	out := OrderOut{
		ID:                       order.ID,
		CustomerID:               order.CustomerID,
		CurrentLineItemsQuantity: order.CurrentLineItemsQuantity,
		CurrentTotalPrice:        order.CurrentTotalPrice,
		CurrentTotalTax:          order.CurrentTotalTax,
		CurrentTotalWeight:       order.CurrentTotalWeight,
		FulfillmentStatus:        order.FulfillmentStatus,
		PaymentStatus:            order.PaymentStatus,
		RefundStatus:             order.RefundStatus,
		CreatedAt:                order.CreatedAt,
		CancelledAt:              order.CancelledAt,
		ClosedAt:                 order.ClosedAt,
		GCLID:                    order.GCLID,
		LandingPageURL:           order.LandingPageURL,
		LineItems:                []OrderLineOut{},
	}
	for _, line := range order.Lines {
		out.LineItems = append(out.LineItems, OrderLineOut{
			ID:                line.ID,
			OrderID:           line.OrderID,
			SKU:               line.SKU,
			Product:           line.Product,
			Variant:           line.Variant,
			LineItemGroup:     line.LineItemGroup,
			ContractID:        line.ContractID,
			CurrentPrice:      line.CurrentPrice,
			CurrentTax:        line.CurrentTax,
			CurrentTaxRate:    line.CurrentTaxRate,
			Quantity:          line.Quantity,
			FulfillmentStatus: line.FulfillmentStatus,
			RemainingQuantity: line.RemainingQuantity,
		})
	}
	return out
}
