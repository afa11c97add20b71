package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// JWTVerifier validates HS256 bearer tokens. Webhook tokens are verified
// against the presenting tenant's webhook secret, admin tokens against the
// service-wide admin secret. Verification lives at adapter level so the
// application layer stays crypto-library agnostic.
type JWTVerifier struct {
	adminSecret string
}

func NewJWTVerifier(adminSecret string) *JWTVerifier {
	return &JWTVerifier{adminSecret: adminSecret}
}

type webhookJWTClaims struct {
	ApplicationID string `json:"application_id"`
	PayloadID     string `json:"payload_id"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) VerifyWebhookToken(token, secret string) (ports.WebhookClaims, error) {
	if secret == "" {
		return ports.WebhookClaims{}, errors.New("webhook secret not configured")
	}

	parsed, err := jwt.ParseWithClaims(token, &webhookJWTClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.WebhookClaims{}, err
	}
	claims, ok := parsed.Claims.(*webhookJWTClaims)
	if !ok || !parsed.Valid {
		return ports.WebhookClaims{}, errors.New("invalid token claims")
	}

	return ports.WebhookClaims{
		ApplicationID: claims.ApplicationID,
		PayloadID:     claims.PayloadID,
	}, nil
}

func (v *JWTVerifier) VerifyAdminToken(token string) error {
	if v.adminSecret == "" {
		return errors.New("admin secret not configured")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(v.adminSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// MintWebhookToken signs a webhook notification token with a tenant secret.
// The platform does this on its side in production; the helper keeps local
// integration setups and tests honest about the claim set.
func MintWebhookToken(secret, applicationID, payloadID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, webhookJWTClaims{
		ApplicationID: applicationID,
		PayloadID:     payloadID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}

// MintAdminToken signs an admin bearer token with the service admin secret.
func MintAdminToken(secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}
