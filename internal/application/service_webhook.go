package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// HandleNotification resolves a pending request into the ownership index.
// Duplicate or unrelated notifications are a no-op. Ownership propagation for
// every known identity space must succeed before the pending record is
// deleted; otherwise the linkage would be lost permanently.
func (s *Service) HandleNotification(ctx context.Context, n Notification) error {
	policy, err := s.policies.GetByApplication(ctx, n.ApplicationID)
	if err != nil || policy == nil {
		return fmt.Errorf("%w: unknown application", domain.ErrUnauthorized)
	}
	claims, err := s.tokens.VerifyWebhookToken(n.SignedToken, policy.WebhookSecret)
	if err != nil || claims.PayloadID != n.PayloadID {
		s.logger.WarnContext(ctx, "webhook token rejected",
			"module", "application",
			"operation", "handle_notification",
			"outcome", "failure",
			"application_id", n.ApplicationID,
		)
		return fmt.Errorf("%w: webhook token", domain.ErrUnauthorized)
	}

	pending, err := s.pending.Get(ctx, n.ApplicationID, n.PayloadID)
	if err != nil {
		return fmt.Errorf("%w: pending lookup: %v", domain.ErrUpstream, err)
	}
	if pending == nil {
		// Duplicate delivery or a payload this instance never issued.
		return nil
	}

	details, err := s.platform.Get(ctx, platformCreds(policy), n.PayloadID)
	if err != nil {
		return fmt.Errorf("%w: fetch payload: %v", domain.ErrUpstream, err)
	}

	payloadType := domain.NormalizePayloadType(details.Payload.TxType)
	if pending.SignInToValidate && payloadType == domain.PayloadTypeSignIn {
		// The sign-in stands in for a payment; later payment checks must
		// find it in the payment bucket.
		payloadType = domain.PayloadTypePayment
	}
	walletUserID := details.Application.IssuedUserToken
	if walletUserID == "" {
		walletUserID = n.UserToken
	}
	account := details.Response.Account

	now := s.nowFn()
	write := func(space domain.IdentitySpace, identity string) error {
		if identity == "" {
			return nil
		}
		return s.RecordOwnership(ctx, ports.OwnershipWriteParams{
			Space:         space,
			Origin:        pending.Origin,
			Referrer:      pending.Referrer,
			ApplicationID: pending.ApplicationID,
			IdentityValue: identity,
			PayloadType:   payloadType,
			PayloadID:     pending.PayloadID,
			WalletUserID:  walletUserID,
			WrittenAt:     now,
		})
	}

	if err := write(domain.SpaceFrontend, pending.FrontendID); err != nil {
		return err
	}
	if err := write(domain.SpaceWalletUser, walletUserID); err != nil {
		return err
	}
	if err := write(domain.SpaceAccount, account); err != nil {
		return err
	}

	if payloadType == domain.PayloadTypePayment && account != "" && walletUserID != "" {
		if err := s.accounts.Upsert(ctx, pending.ApplicationID, account, walletUserID, now); err != nil {
			// The two-tier resolver survives without the direct mapping;
			// sign-in records remain the primary source.
			s.logger.WarnContext(ctx, "account mapping upsert failed",
				"module", "application",
				"operation", "handle_notification",
				"outcome", "failure",
				"application_id", pending.ApplicationID,
				"error", err,
			)
		}
	}

	if err := s.pending.Delete(ctx, n.ApplicationID, n.PayloadID); err != nil {
		return fmt.Errorf("%w: delete pending: %v", domain.ErrUpstream, err)
	}

	eventBody, _ := json.Marshal(map[string]any{
		"application_id": n.ApplicationID,
		"payload_id":     n.PayloadID,
		"payload_type":   payloadType,
		"signed":         details.Meta.Signed,
		"resolved_at":    details.Response.ResolvedAt,
	})
	_ = s.events.Publish(ctx, "payload.resolved", eventBody)

	s.logger.InfoContext(ctx, "pending request resolved",
		"module", "application",
		"operation", "handle_notification",
		"outcome", "success",
		"application_id", n.ApplicationID,
		"payload_id", n.PayloadID,
		"payload_type", payloadType,
	)
	return nil
}
