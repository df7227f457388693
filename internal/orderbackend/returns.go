package orderbackend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ReturnReason / ReturnCondition / ReturnRequest are the closed enums from
// §4.1's RegisterReturn contract.
type ReturnReason string

const (
	ReasonDefective      ReturnReason = "defective"
	ReasonDamaged        ReturnReason = "damaged"
	ReasonWrongItem      ReturnReason = "wrong_item"
	ReasonSizeIssue      ReturnReason = "size_issue"
	ReasonImageDifferent ReturnReason = "image_different"
	ReasonOther          ReturnReason = "other"
)

type ReturnCondition string

const (
	ConditionUnopened ReturnCondition = "unopened"
	ConditionOpened   ReturnCondition = "opened"
)

type ReturnRequestKind string

const (
	RequestRefund   ReturnRequestKind = "refund"
	RequestExchange ReturnRequestKind = "exchange"
)

// ReturnParams is the RegisterReturn request shape.
type ReturnParams struct {
	OrderID     string
	Reason      ReturnReason
	Condition   ReturnCondition
	Request     ReturnRequestKind
	Description string
}

// ReturnResult is RegisterReturn's outcome, mirroring §4.1's {success,
// returnId?, message}. RequiresHandoff surfaces the eligibility table's
// decision so the dispatcher can build a structured tool Result.
type ReturnResult struct {
	Success         bool
	ReturnID        string
	Message         string
	RequiresHandoff bool
}

// Eligibility evaluates the total-function decision table from §4.1. It is
// pure and total over its inputs so it can be property-tested directly.
func Eligibility(reason ReturnReason, condition ReturnCondition, totalAmount float64, daysSinceDelivered int) (eligible, requiresHandoff bool, note string) {
	if totalAmount >= 10000 {
		return false, true, "high-value, needs agent"
	}
	if daysSinceDelivered > 7 {
		return false, true, "return window elapsed, needs agent"
	}
	switch reason {
	case ReasonDefective, ReasonDamaged, ReasonWrongItem:
		return true, false, "seller pays return shipping"
	}
	if condition == ConditionOpened {
		return false, true, "opened item outside qualifying reasons, needs agent"
	}
	return true, false, "buyer pays return shipping"
}

// RegisterReturn appends a note to the order and synthesizes a local
// returnId, per §4.1: "Implemented as an append to the order's note field
// plus a locally generated returnId." The order is fetched first; then
// eligibility is checked, and high-value/stale/opened-ineligible returns
// are never written to the backend.
func (c *Client) RegisterReturn(ctx context.Context, p ReturnParams) (ReturnResult, error) {
	order, err := c.GetOrder(ctx, p.OrderID)
	if err != nil {
		return ReturnResult{}, err
	}
	if order == nil {
		return ReturnResult{Success: false, Message: "order not found"}, nil
	}

	days := daysSince(order.ShippedDate)
	eligible, requiresHandoff, note := Eligibility(p.Reason, p.Condition, order.TotalAmount, days)
	if !eligible {
		msg := "高額商品のため、担当者が対応いたします。"
		if requiresHandoff && note != "high-value, needs agent" {
			msg = "恐れ入りますが、担当者におつなぎいたします。"
		}
		return ReturnResult{Success: false, Message: msg, RequiresHandoff: true}, nil
	}

	returnID := "RET-" + uuid.New().String()[:8]
	noteLine := fmt.Sprintf("return registered: %s id=%s reason=%s condition=%s request=%s desc=%q",
		time.Now().Format(time.RFC3339), returnID, p.Reason, p.Condition, p.Request, p.Description)

	form := url.Values{
		"order_id-eq": {p.OrderID},
		"note":        {noteLine},
	}
	var env backendEnvelope
	if err := c.authedPostForm(ctx, "/orders/append-note", form, &env); err != nil {
		return ReturnResult{}, err
	}

	return ReturnResult{
		Success:  true,
		ReturnID: returnID,
		Message:  "返品手続きを受け付けました。受付番号は" + returnID + "です。" + noteKindMessage(note),
	}, nil
}

func noteKindMessage(note string) string {
	if note == "seller pays return shipping" {
		return "返送料は当店負担です。"
	}
	return "返送料はお客様負担となります。"
}

func daysSince(dateStr string) int {
	if dateStr == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return 0
	}
	return int(time.Since(t).Hours() / 24)
}
