// Package callctx defines the wire-shared data model produced at webhook
// time and consumed when the media stream connects: caller identity, order
// snapshots, and the base64/JSON envelope that carries them between the two.
package callctx

import "time"

// CallIdentity is immutable for the lifetime of a call.
type CallIdentity struct {
	CallID       string    `json:"callId"`
	CallerNumber string    `json:"callerNumber"`
	StartedAt    time.Time `json:"startedAt"`
}

// OrderStatus is the closed set of statuses the bridge ever reasons about.
// Backend-specific codes are mapped onto this set by orderbackend.MapStatus.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusReturned  OrderStatus = "returned"
)

// Platform is inferred from the backend's store-id prefix.
type Platform string

const (
	PlatformRakuten Platform = "rakuten"
	PlatformAmazon  Platform = "amazon"
	PlatformShopify Platform = "shopify"
)

// OrderItem is one line item on an order.
type OrderItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// Order is the canonical record the bridge holds a read-only snapshot of.
// The only bridge-initiated write is RegisterReturn, which appends a note.
type Order struct {
	OrderID        string      `json:"orderId"`
	CustomerName   string      `json:"customerName"`
	CustomerEmail  string      `json:"customerEmail"`
	CustomerPhone  string      `json:"customerPhone"`
	Status         OrderStatus `json:"status"`
	OrderDate      string      `json:"orderDate"`
	ShippedDate    string      `json:"shippedDate,omitempty"`
	Carrier        string      `json:"carrier,omitempty"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	Platform       Platform    `json:"platform"`
	Notes          []string    `json:"notes,omitempty"`
}

// OrderSummary is the trimmed shape carried inside IdentificationContext —
// the full Order is fetched again on demand via GetOrder when a tool needs
// fields beyond what was prefetched at webhook time.
type OrderSummary struct {
	OrderID        string      `json:"orderId"`
	Status         OrderStatus `json:"status"`
	OrderDate      string      `json:"orderDate"`
	Carrier        string      `json:"carrier,omitempty"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	TrackingURL    string      `json:"trackingUrl,omitempty"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
}

// IdentificationContext is produced by the order backend client before the
// media socket opens and is carried through the carrier's custom stream
// parameters so the mediator can reconstruct it without a second lookup.
type IdentificationContext struct {
	Found         bool           `json:"found"`
	CustomerName  string         `json:"customerName,omitempty"`
	CustomerEmail string         `json:"customerEmail,omitempty"`
	GreetingHint  string         `json:"greetingHint"`
	Orders        []OrderSummary `json:"orders"`
	Error         bool           `json:"error,omitempty"`
	LookupMs      int            `json:"lookupMs,omitempty"`
}
