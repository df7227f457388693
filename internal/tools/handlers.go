package tools

import (
	"context"
	"fmt"

	"github.com/nayacomm/voicebridge/internal/orderbackend"
)

func (r *Registry) checkOrderStatus(ctx context.Context, args map[string]interface{}, cc CallContext) Result {
	phone := argString(args, "phone_number")
	orderID := argString(args, "order_id")
	if phone == "" && orderID == "" {
		phone = cc.CallerPhone
	}

	if orderID != "" {
		order, err := r.backend.GetOrder(ctx, orderID)
		if err != nil {
			r.log.Printf("check_order_status: backend error: %v", err)
			return Result{Kind: ResultText, Text: "只今注文情報を確認できません。恐れ入りますが、担当者におつなぎいたします。"}
		}
		if order == nil {
			return Result{Kind: ResultText, Text: fmt.Sprintf("注文番号%sが見つかりませんでした。", orderID)}
		}
		return Result{Kind: ResultText, Text: orderbackend.StatusMessage(order.Status, order.Carrier, order.TrackingNumber)}
	}

	orders, err := r.backend.SearchOrders(ctx, orderbackend.SearchParams{Phone: phone, Limit: 5})
	if err != nil {
		r.log.Printf("check_order_status: backend error: %v", err)
		return Result{Kind: ResultText, Text: "只今注文情報を確認できません。恐れ入りますが、担当者におつなぎいたします。"}
	}
	switch len(orders) {
	case 0:
		return Result{Kind: ResultText, Text: "お客様のご注文が見つかりませんでした。"}
	case 1:
		o := orders[0]
		return Result{Kind: ResultText, Text: orderbackend.StatusMessage(o.Status, o.Carrier, o.TrackingNumber)}
	default:
		return Result{Kind: ResultText, Text: "複数のご注文が見つかりました。注文番号を教えていただけますか。"}
	}
}

func (r *Registry) registerReturn(ctx context.Context, args map[string]interface{}) Result {
	p := orderbackend.ReturnParams{
		OrderID:     argString(args, "order_id"),
		Reason:      orderbackend.ReturnReason(argString(args, "reason")),
		Condition:   orderbackend.ReturnCondition(argString(args, "condition")),
		Request:     orderbackend.ReturnRequestKind(argString(args, "request")),
		Description: argString(args, "description"),
	}
	res, err := r.backend.RegisterReturn(ctx, p)
	if err != nil {
		r.log.Printf("register_return: backend error: %v", err)
		return Result{Kind: ResultStructured, Success: false, RequiresHandoff: true, Message: "只今手続きできません。担当者におつなぎいたします。"}
	}
	return Result{
		Kind:            ResultStructured,
		Success:         res.Success,
		Message:         res.Message,
		RequiresHandoff: res.RequiresHandoff,
	}
}

func (r *Registry) sendEmail(ctx context.Context, args map[string]interface{}, cc CallContext) Result {
	if cc.CustomerEmail == "" {
		return Result{Kind: ResultText, Text: "メールアドレスを教えていただけますか。"}
	}
	template := argString(args, "template")
	subject, body, ok := renderEmailTemplate(template, cc, r.shopName)
	if !ok {
		return Result{Kind: ResultText, Text: "そのメールは送信できませんでした。"}
	}
	if err := r.email.Send(ctx, cc.CustomerEmail, subject, body); err != nil {
		r.log.Printf("send_email: adapter error: %v", err)
		return Result{Kind: ResultText, Text: "メールの送信に失敗しました。"}
	}
	return Result{Kind: ResultText, Text: "メールを送信しました。"}
}

func (r *Registry) transferToHuman(args map[string]interface{}) Result {
	priority := Priority(argString(args, "priority"))
	if priority == "" {
		priority = PriorityNormal
	}
	return Result{
		Kind:            ResultHandoff,
		HandoffReason:   argString(args, "reason"),
		HandoffSummary:  argString(args, "summary"),
		HandoffPriority: priority,
	}
}
