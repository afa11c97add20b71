package ports

// WebhookClaims are the verified claims of a platform notification token.
type WebhookClaims struct {
	ApplicationID string
	PayloadID     string
}

// TokenVerifier validates bearer tokens presented to this service. Webhook
// tokens are minted per tenant from the tenant's webhook secret; admin tokens
// guard administrative operations such as the cache reset.
type TokenVerifier interface {
	VerifyWebhookToken(token, secret string) (WebhookClaims, error)
	VerifyAdminToken(token string) error
}
