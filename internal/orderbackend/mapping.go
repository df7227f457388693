package orderbackend

import (
	"fmt"
	"strings"

	"github.com/nayacomm/voicebridge/pkg/callctx"
)

// MapStatus implements the closed mapping from §4.1: unknown codes default
// to pending rather than erroring, so a backend schema drift never crashes
// a call.
func MapStatus(code string) callctx.OrderStatus {
	switch code {
	case "10":
		return callctx.StatusPending
	case "20":
		return callctx.StatusPreparing
	case "30":
		return callctx.StatusConfirmed
	case "40":
		return callctx.StatusShipped
	case "50":
		return callctx.StatusDelivered
	case "99":
		return callctx.StatusCancelled
	default:
		return callctx.StatusPending
	}
}

var carrierTable = []string{"ヤマト運輸", "佐川急便", "日本郵便", "ゆうパック", "西濃運輸", "福山通運"}

// carrierTrackingURLTemplate maps a carrier name onto its public tracking
// page, %s substituted with the tracking number. Carriers absent from this
// table yield no URL (send_email falls back to the number alone).
var carrierTrackingURLTemplate = map[string]string{
	"ヤマト運輸": "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=%s",
	"佐川急便":  "https://k2k.sagawa-exp.co.jp/p/sagawa/web/okurijoinput.jsp?okurijoNo=%s",
	"日本郵便":  "https://trackings.post.japanpost.jp/services/srv/search/?requestNo1=%s",
}

// TrackingURL builds the carrier's public tracking page for trackingNumber,
// or "" if the carrier isn't in the table or either input is empty.
func TrackingURL(carrier, trackingNumber string) string {
	tpl, ok := carrierTrackingURLTemplate[carrier]
	if !ok || trackingNumber == "" {
		return ""
	}
	return fmt.Sprintf(tpl, trackingNumber)
}

// ExtractCarrier substring-matches a delivery-method string against the
// fixed carrier table; an unmatched string is returned verbatim.
func ExtractCarrier(deliveryMethod string) string {
	for _, name := range carrierTable {
		if strings.Contains(deliveryMethod, name) {
			return name
		}
	}
	return deliveryMethod
}

// InferPlatform derives the sales platform from the backend's store-id
// prefix, per §4.1.
func InferPlatform(storeID string) callctx.Platform {
	switch {
	case strings.HasPrefix(storeID, "rakuten") || strings.HasPrefix(storeID, "1"):
		return callctx.PlatformRakuten
	case strings.HasPrefix(storeID, "amazon") || strings.HasPrefix(storeID, "2"):
		return callctx.PlatformAmazon
	default:
		return callctx.PlatformShopify
	}
}

// StatusMessage derives a human-readable status line from status plus
// carrier/tracking presence, per §6.
func StatusMessage(status callctx.OrderStatus, carrier, tracking string) string {
	switch status {
	case callctx.StatusShipped:
		if carrier != "" && tracking != "" {
			return carrier + "にて発送済みです。追跡番号は" + tracking + "です。"
		}
		return "発送済みです。"
	case callctx.StatusDelivered:
		return "お届け済みです。"
	case callctx.StatusPreparing, callctx.StatusConfirmed:
		return "発送準備中です。"
	case callctx.StatusCancelled:
		return "ご注文はキャンセルされています。"
	case callctx.StatusReturned:
		return "返品処理が完了しています。"
	default:
		return "ご注文を確認中です。"
	}
}

// NormalizePhone implements the law from §8: strip a leading "+81"/"81" back
// to a national "0" prefix and remove dashes. Idempotent.
func NormalizePhone(raw string) string {
	s := strings.ReplaceAll(raw, "-", "")
	switch {
	case strings.HasPrefix(s, "+81"):
		return "0" + strings.TrimPrefix(s, "+81")
	case strings.HasPrefix(s, "81") && len(s) >= 11:
		return "0" + strings.TrimPrefix(s, "81")
	default:
		return s
	}
}
