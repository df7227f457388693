// Package prompt composes the per-call system instruction from
// identification context (C5). The composed string is treated as opaque by
// C2 — nothing downstream parses it.
package prompt

import (
	"strings"
	"text/template"

	"github.com/nayacomm/voicebridge/pkg/callctx"
)

const policyBlock = `あなたはECサイトのカスタマーサポート音声アシスタントです。
丁寧な言葉遣いで、短い文で話してください。数字は一桁ずつ発音してください。
注文状況の確認、返品の受付、メールの送信はあなたが対応できますが、
返金の最終承認や高額商品の返品、クレーム対応は人間の担当者に引き継いでください。
通話の最初と最後には挨拶を述べてください。`

var contextTpl = template.Must(template.New("context").Parse(
	`{{if .Found}}現在のお客様: {{.CustomerName}}さま。名前を添えて挨拶してください。本人確認が否定された場合は謝罪し、お名前を伺い直してください。
{{if .HasOrder}}直近のご注文: 注文番号{{.OrderID}}、{{.OrderDate}}、商品: {{.ItemNames}}、状況: {{.StatusHint}}、追跡番号: {{.Tracking}}。ただしお客様から聞かれない限りこれらの詳細を自分から話さないでください。
{{end}}{{else}}お客様の情報が見つかりませんでした。まずお名前を伺い、ご注文に関する話題であれば注文番号も伺ってください。{{if .Error}}(内部事由: 識別バックエンドへの問い合わせに失敗){{end}}
{{end}}`))

type contextView struct {
	Found        bool
	CustomerName string
	HasOrder     bool
	OrderID      string
	OrderDate    string
	ItemNames    string
	StatusHint   string
	Tracking     string
	Error        bool
}

// Compose builds the full system instruction string for one call.
func Compose(ic callctx.IdentificationContext) string {
	view := contextView{
		Found:        ic.Found,
		CustomerName: ic.CustomerName,
		Error:        ic.Error,
	}
	if len(ic.Orders) > 0 {
		o := ic.Orders[0]
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, it.Name)
		}
		view.HasOrder = true
		view.OrderID = o.OrderID
		view.OrderDate = o.OrderDate
		view.ItemNames = strings.Join(names, "、")
		view.StatusHint = string(o.Status)
		view.Tracking = o.TrackingNumber
	}

	var sb strings.Builder
	sb.WriteString(policyBlock)
	sb.WriteString("\n\n")
	_ = contextTpl.Execute(&sb, view)
	return sb.String()
}
