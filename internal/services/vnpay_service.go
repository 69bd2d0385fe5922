package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Gateway response code for a successful payment.
const vnpResponseSuccess = "00"

// VNPayService builds outbound signed redirect URLs and verifies inbound
// signed callbacks for the VNPay gateway. Both directions sign the same
// canonical query string: parameters sorted by key, values URL-encoded,
// joined as key=value pairs with '&', HMAC-SHA512 under the merchant secret.
type VNPayService struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
	now        func() time.Time
}

func NewVNPayService(tmnCode, hashSecret, payURL, returnURL string) *VNPayService {
	return &VNPayService{
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		payURL:     payURL,
		returnURL:  returnURL,
		now:        time.Now,
	}
}

// BuildPaymentURL returns the full redirect URL for the given order.
// The gateway expects the amount multiplied by 100 and the transaction
// reference zero-padded.
func (s *VNPayService) BuildPaymentURL(orderNumber int64, amount int64, clientIP string) string {
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    s.tmnCode,
		"vnp_Amount":     strconv.FormatInt(amount*100, 10),
		"vnp_CreateDate": s.now().Format("20060102150405"),
		"vnp_CurrCode":   "VND",
		"vnp_IpAddr":     clientIP,
		"vnp_Locale":     "vn",
		"vnp_OrderInfo":  fmt.Sprintf("Payment for order %012d", orderNumber),
		"vnp_OrderType":  "other",
		"vnp_ReturnUrl":  s.returnURL,
		"vnp_TxnRef":     fmt.Sprintf("%012d", orderNumber),
	}

	data := canonicalQuery(params)
	return s.payURL + "?" + data + "&vnp_SecureHash=" + s.sign(data)
}

// VerifyCallback reports whether the inbound callback parameters carry a
// valid signature. The hash fields are stripped before the canonical string
// is rebuilt over the remaining parameters.
func (s *VNPayService) VerifyCallback(params map[string]string) bool {
	supplied, ok := params["vnp_SecureHash"]
	if !ok || supplied == "" {
		return false
	}

	rest := make(map[string]string, len(params))
	for k, v := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		rest[k] = v
	}

	expected := s.sign(canonicalQuery(rest))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied)))
}

// ParseTxnRef converts a zero-padded transaction reference back to the order
// number it was built from.
func ParseTxnRef(ref string) (int64, error) {
	n, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrSignatureMismatch
	}
	return n, nil
}

func (s *VNPayService) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(s.hashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery produces the deterministic representation both directions
// sign. Empty values are skipped, keys sorted lexicographically.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return sb.String()
}
