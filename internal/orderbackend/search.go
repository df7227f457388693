package orderbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/nayacomm/voicebridge/pkg/callctx"
)

type wireOrder struct {
	OrderID        string      `json:"order_id"`
	CustomerName   string      `json:"customer_name"`
	CustomerEmail  string      `json:"customer_email"`
	CustomerPhone  string      `json:"customer_phone"`
	Status         string      `json:"status"`
	OrderDate      string      `json:"order_date"`
	ShippedDate    string      `json:"shipped_date"`
	DeliveryMethod string      `json:"delivery_method"`
	TrackingNumber string      `json:"tracking_number"`
	StoreID        string      `json:"store_id"`
	TotalAmount    string      `json:"total_amount"`
	Items          []wireItem `json:"items"`
}

type wireItem struct {
	Name  string `json:"name"`
	Qty   string `json:"qty"`
	Price string `json:"price"`
}

func (w wireOrder) toOrder() callctx.Order {
	carrier := ExtractCarrier(w.DeliveryMethod)
	items := make([]callctx.OrderItem, 0, len(w.Items))
	for _, it := range w.Items {
		items = append(items, callctx.OrderItem{
			Name:  it.Name,
			Qty:   atoiSafe(it.Qty),
			Price: atofSafe(it.Price),
		})
	}
	return callctx.Order{
		OrderID:        w.OrderID,
		CustomerName:   w.CustomerName,
		CustomerEmail:  w.CustomerEmail,
		CustomerPhone:  w.CustomerPhone,
		Status:         MapStatus(w.Status),
		OrderDate:      w.OrderDate,
		ShippedDate:    w.ShippedDate,
		Carrier:        carrier,
		TrackingNumber: w.TrackingNumber,
		Items:          items,
		TotalAmount:    atofSafe(w.TotalAmount),
		Platform:       InferPlatform(w.StoreID),
	}
}

func atoiSafe(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}

func atofSafe(s string) float64 {
	var f float64
	_, _ = fmt.Sscanf(s, "%f", &f)
	return f
}

// SearchParams constrains SearchOrders; at least one of Phone/OrderID is
// required per §4.1.
type SearchParams struct {
	Phone   string
	OrderID string
	Limit   int
}

// SearchOrders queries the backend's search endpoint, mapping its
// string-typed wire rows onto Order. Results are sorted newest first.
func (c *Client) SearchOrders(ctx context.Context, params SearchParams) ([]callctx.Order, error) {
	if params.Phone == "" && params.OrderID == "" {
		return nil, fmt.Errorf("orderbackend: SearchOrders requires phone or orderId")
	}
	form := url.Values{}
	if params.Phone != "" {
		form.Set("customer_phone-like", NormalizePhone(params.Phone))
	}
	if params.OrderID != "" {
		form.Set("order_id-eq", params.OrderID)
	}
	if params.Limit > 0 {
		form.Set("limit", fmt.Sprintf("%d", params.Limit))
	}

	var env backendEnvelope
	if err := c.authedPostForm(ctx, "/orders/search", form, &env); err != nil {
		return nil, err
	}
	if env.Result == "error" {
		return nil, &Error{Kind: KindSchemaMismatch, Op: "SearchOrders", Err: fmt.Errorf("%s", env.Message)}
	}

	var wire []wireOrder
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			// schema mismatch: log and return empty, never crash the call.
			c.log.Printf("SearchOrders: schema mismatch decoding data: %v", err)
			return nil, nil
		}
	}

	orders := make([]callctx.Order, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, w.toOrder())
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate > orders[j].OrderDate })
	return orders, nil
}

// GetOrder fetches exactly one order by id, or nil if not found.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*callctx.Order, error) {
	orders, err := c.SearchOrders(ctx, SearchParams{OrderID: orderID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

// SearchByPhone produces the IdentificationContext consumed at webhook
// time. A backend failure or a zero-match result both yield found=false —
// only an error from SearchOrders (transport, auth, or an "error" envelope)
// additionally sets error=true; data that fails to decode counts as zero
// matches. Either way the call proceeds with a neutral greeting (§4.1, §7).
func (c *Client) SearchByPhone(ctx context.Context, phone string) callctx.IdentificationContext {
	start := time.Now()
	orders, err := c.SearchOrders(ctx, SearchParams{Phone: phone, Limit: 5})
	lookupMs := int(time.Since(start).Milliseconds())

	if err != nil {
		c.log.Printf("SearchByPhone: backend error, proceeding unidentified: %v", err)
		return callctx.IdentificationContext{
			Found:        false,
			Error:        true,
			GreetingHint: "ask for the customer's name",
			LookupMs:     lookupMs,
		}
	}
	if len(orders) == 0 {
		return callctx.IdentificationContext{
			Found:        false,
			GreetingHint: "ask for the customer's name",
			LookupMs:     lookupMs,
		}
	}

	summaries := make([]callctx.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, callctx.OrderSummary{
			OrderID:        o.OrderID,
			Status:         o.Status,
			OrderDate:      o.OrderDate,
			Carrier:        o.Carrier,
			TrackingNumber: o.TrackingNumber,
			TrackingURL:    TrackingURL(o.Carrier, o.TrackingNumber),
			Items:          o.Items,
			TotalAmount:    o.TotalAmount,
		})
	}
	return callctx.IdentificationContext{
		Found:         true,
		CustomerName:  orders[0].CustomerName,
		CustomerEmail: orders[0].CustomerEmail,
		GreetingHint:  "greet " + orders[0].CustomerName + " by name",
		Orders:        summaries,
		LookupMs:      lookupMs,
	}
}
