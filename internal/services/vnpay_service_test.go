package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVNPay() *VNPayService {
	s := NewVNPayService("TESTTMN1", "supersecretkey", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", "http://localhost:8080/api/payments/callback")
	s.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	return s
}

func queryParams(t *testing.T, rawURL string) map[string]string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	values, err := url.ParseQuery(parsed.RawQuery)
	require.NoError(t, err)

	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params
}

func TestBuildPaymentURLParameterSet(t *testing.T) {
	s := testVNPay()
	raw := s.BuildPaymentURL(42, 450000, "192.168.1.10")

	params := queryParams(t, raw)
	assert.Equal(t, "2.1.0", params["vnp_Version"])
	assert.Equal(t, "pay", params["vnp_Command"])
	assert.Equal(t, "TESTTMN1", params["vnp_TmnCode"])
	assert.Equal(t, "45000000", params["vnp_Amount"], "amount is sent multiplied by 100")
	assert.Equal(t, "VND", params["vnp_CurrCode"])
	assert.Equal(t, "192.168.1.10", params["vnp_IpAddr"])
	assert.Equal(t, "20240315103000", params["vnp_CreateDate"])
	assert.Equal(t, "000000000042", params["vnp_TxnRef"], "transaction reference is zero-padded")
	assert.NotEmpty(t, params["vnp_SecureHash"])

	assert.True(t, strings.HasSuffix(raw, "&vnp_SecureHash="+params["vnp_SecureHash"]),
		"secure hash must be the last query parameter")
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	s := testVNPay()
	raw := s.BuildPaymentURL(123456, 500000, "10.0.0.1")

	params := queryParams(t, raw)
	assert.True(t, s.VerifyCallback(params))
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	s := testVNPay()
	raw := s.BuildPaymentURL(123456, 500000, "10.0.0.1")
	base := queryParams(t, raw)

	for key := range base {
		if key == "vnp_SecureHash" {
			continue
		}
		tampered := make(map[string]string, len(base))
		for k, v := range base {
			tampered[k] = v
		}
		// Flip the first character of one value.
		value := []byte(tampered[key])
		if value[0] == 'x' {
			value[0] = 'y'
		} else {
			value[0] = 'x'
		}
		tampered[key] = string(value)

		assert.Falsef(t, s.VerifyCallback(tampered), "tampering with %s must invalidate the signature", key)
	}
}

func TestVerifyCallbackWrongSecret(t *testing.T) {
	s := testVNPay()
	raw := s.BuildPaymentURL(7, 100000, "10.0.0.1")
	params := queryParams(t, raw)

	other := NewVNPayService("TESTTMN1", "differentsecret", s.payURL, s.returnURL)
	assert.False(t, other.VerifyCallback(params))
}

func TestVerifyCallbackMissingHash(t *testing.T) {
	s := testVNPay()
	assert.False(t, s.VerifyCallback(map[string]string{"vnp_TxnRef": "000000000001"}))
}

func TestVerifyCallbackIgnoresHashTypeField(t *testing.T) {
	s := testVNPay()
	params := queryParams(t, s.BuildPaymentURL(9, 250000, "10.0.0.1"))
	params["vnp_SecureHashType"] = "HmacSHA512"

	assert.True(t, s.VerifyCallback(params), "hash type field is excluded from signing")
}

func TestCanonicalQuerySortsAndSkipsEmpty(t *testing.T) {
	data := canonicalQuery(map[string]string{
		"b":            "2",
		"a":            "1",
		"vnp_BankCode": "",
		"c":            "hello world",
	})
	assert.Equal(t, "a=1&b=2&c=hello+world", data)
}

func TestParseTxnRef(t *testing.T) {
	n, err := ParseTxnRef("000000000042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = ParseTxnRef("not-a-number")
	assert.Error(t, err)

	_, err = ParseTxnRef("")
	assert.Error(t, err)
}
