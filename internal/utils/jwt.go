package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LinkTokenAudience scopes link tokens so they cannot be replayed elsewhere.
const LinkTokenAudience = "telegram-link"

// ErrLinkTokenSecret is returned when no signing secret is configured.
var ErrLinkTokenSecret = errors.New("link token secret is not configured")

// LinkClaims are the claims of a Telegram deep-link token. The subject is
// the gateway invoice id of a paid purchase.
type LinkClaims struct {
	jwt.RegisteredClaims
}

// PaymentID returns the invoice id the token was issued for.
func (c *LinkClaims) PaymentID() string { return c.Subject }

// NewLinkToken signs an HS256 token binding a paid invoice id. The bot
// passes it back to resolve the purchase without asking for personal data.
func NewLinkToken(secret, paymentID string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrLinkTokenSecret
	}
	claims := LinkClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   paymentID,
		Audience:  jwt.ClaimStrings{LinkTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseLinkToken validates signature, audience and expiry and returns the
// claims.
func ParseLinkToken(secret, raw string) (*LinkClaims, error) {
	if secret == "" {
		return nil, ErrLinkTokenSecret
	}
	claims := &LinkClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(LinkTokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}
