// Package payment builds signed links to the Robokassa hosted payment page
// and verifies the result callbacks it sends back.
package payment

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
)

// Robokassa signs outgoing payment links with Secret1 and checks result
// callbacks against Secret2. It holds no mutable state.
type Robokassa struct {
	cfg config.RobokassaConfig
}

func NewRobokassa(cfg config.RobokassaConfig) *Robokassa {
	return &Robokassa{cfg: cfg}
}

// FormatAmount renders an amount the way the gateway hashes it: always two
// decimals with a dot separator.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// PaymentURL returns the hosted payment page URL for an invoice.
func (r *Robokassa) PaymentURL(invID int64, amount float64, email string) (string, error) {
	if r.cfg.MerchantLogin == "" || r.cfg.Secret1 == "" {
		return "", fmt.Errorf("robokassa: merchant login or secret1: %w", apperr.ErrConfigMissing)
	}
	outSum := FormatAmount(amount)
	inv := strconv.FormatInt(invID, 10)
	sig := md5Hex(r.cfg.MerchantLogin, outSum, inv, r.cfg.Secret1)

	q := url.Values{}
	q.Set("MerchantLogin", r.cfg.MerchantLogin)
	q.Set("OutSum", outSum)
	q.Set("InvId", inv)
	q.Set("SignatureValue", sig)
	if email != "" {
		q.Set("Email", email)
	}
	if r.cfg.IsTest {
		q.Set("IsTest", "1")
	} else {
		q.Set("IsTest", "0")
	}
	return r.cfg.PaymentURL + "?" + q.Encode(), nil
}

// VerifyCallback reports whether signature matches the result callback
// hash. It is false whenever Secret2 or the signature is missing.
func (r *Robokassa) VerifyCallback(outSum, invID, signature string) bool {
	signature = strings.TrimSpace(signature)
	if r.cfg.Secret2 == "" || signature == "" {
		return false
	}
	return strings.EqualFold(md5Hex(outSum, invID, r.cfg.Secret2), signature)
}

func md5Hex(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
