package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// SubmitPayload issues a new signing request through the platform. The tenant
// policy may pin the destination and amount per referrer, and a known wallet
// user is attached so the platform can push to the right device. A pending
// request is recorded before returning; the webhook resolves it later.
func (s *Service) SubmitPayload(ctx context.Context, req SubmitPayloadRequest) (SubmitPayloadResponse, error) {
	policy, err := s.policies.GetByOriginAndApplication(ctx, req.Origin, req.ApplicationID)
	if err != nil {
		return SubmitPayloadResponse{}, fmt.Errorf("%w: load policy: %v", domain.ErrUpstream, err)
	}
	if policy == nil {
		return SubmitPayloadResponse{}, domain.ErrOriginNotAllowed
	}

	sub := req.Submission
	sub.PushDisabled = req.Options.PushDisabled
	if sub.UserToken == "" && req.Options.FrontendID != "" {
		sub.UserToken = s.ResolveWalletUser(ctx, req.ApplicationID, req.Options.FrontendID)
	}
	if sub.UserToken == "" && req.Options.XRPLAccount != "" {
		sub.UserToken = s.ResolveWalletUserByAccount(ctx, req.ApplicationID, req.Options.XRPLAccount)
	}
	if rule, ok := policy.ResolveReturnURL(req.Options.Referer); ok {
		sub.ReturnURLApp = rule.AppURL
		if req.Options.Web {
			sub.ReturnURLApp = rule.WebURL
		}
		sub.ReturnURLWeb = rule.WebURL
	}
	if sub.TxType == domain.PayloadTypePayment {
		sub.TxJSON = s.applyPaymentOverrides(policy, req.Options.Referer, sub.TxJSON)
	}

	created, err := s.platform.Submit(ctx, platformCreds(policy), sub)
	if err != nil {
		s.logger.ErrorContext(ctx, "payload submission failed",
			"module", "application",
			"operation", "submit_payload",
			"outcome", "failure",
			"application_id", req.ApplicationID,
			"error", err,
		)
		return SubmitPayloadResponse{}, fmt.Errorf("%w: submit payload: %v", domain.ErrUpstream, err)
	}

	now := s.nowFn()
	pendingErr := s.pending.Put(ctx, domain.PendingRequest{
		ID:               uuid.New(),
		ApplicationID:    req.ApplicationID,
		Origin:           req.Origin,
		Referrer:         req.Options.Referer,
		FrontendID:       req.Options.FrontendID,
		WalletUserID:     sub.UserToken,
		PayloadID:        created.PayloadID,
		SignInToValidate: req.Options.SignInToValidate,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.cfg.PendingTTL),
	})
	if pendingErr != nil {
		// The payload is already issued; losing the pending record only
		// costs the identity linkage, not the signing flow.
		s.logger.ErrorContext(ctx, "pending request write failed",
			"module", "application",
			"operation", "submit_payload",
			"outcome", "failure",
			"payload_id", created.PayloadID,
			"error", pendingErr,
		)
	}

	eventBody, _ := json.Marshal(map[string]any{
		"application_id": req.ApplicationID,
		"payload_id":     created.PayloadID,
		"tx_type":        sub.TxType,
		"submitted_at":   now,
	})
	_ = s.events.Publish(ctx, "payload.submitted", eventBody)

	return SubmitPayloadResponse{
		Success:    true,
		PayloadID:  created.PayloadID,
		NextAlways: created.NextAlways,
		NextNoPush: created.NextNoPush,
		QRPNG:      created.QRPNG,
	}, nil
}

// GetPayload fetches the current payload state from the platform.
func (s *Service) GetPayload(ctx context.Context, origin, applicationID, payloadID string) (domain.PayloadDetails, error) {
	policy, err := s.policies.GetByOriginAndApplication(ctx, origin, applicationID)
	if err != nil || policy == nil {
		return domain.PayloadDetails{}, domain.ErrOriginNotAllowed
	}
	details, err := s.platform.Get(ctx, platformCreds(policy), payloadID)
	if err != nil {
		return domain.PayloadDetails{}, fmt.Errorf("%w: fetch payload: %v", domain.ErrUpstream, err)
	}
	return details, nil
}

// GetPayloadByCustomIdentifier fetches payload state by the tenant-supplied
// identifier attached at submission time.
func (s *Service) GetPayloadByCustomIdentifier(ctx context.Context, origin, applicationID, customIdentifier string) (domain.PayloadDetails, error) {
	policy, err := s.policies.GetByOriginAndApplication(ctx, origin, applicationID)
	if err != nil || policy == nil {
		return domain.PayloadDetails{}, domain.ErrOriginNotAllowed
	}
	details, err := s.platform.GetByCustomIdentifier(ctx, platformCreds(policy), customIdentifier)
	if err != nil {
		return domain.PayloadDetails{}, fmt.Errorf("%w: fetch payload: %v", domain.ErrUpstream, err)
	}
	return details, nil
}

// DeletePayload cancels an open payload on the platform.
func (s *Service) DeletePayload(ctx context.Context, origin, applicationID, payloadID string) error {
	policy, err := s.policies.GetByOriginAndApplication(ctx, origin, applicationID)
	if err != nil || policy == nil {
		return domain.ErrOriginNotAllowed
	}
	if err := s.platform.Delete(ctx, platformCreds(policy), payloadID); err != nil {
		return fmt.Errorf("%w: delete payload: %v", domain.ErrUpstream, err)
	}
	return nil
}

// applyPaymentOverrides rewrites the transaction template with the tenant's
// fixed destination and amount for the referrer, wildcard included. The
// template is left untouched when it cannot be parsed; the platform rejects
// malformed transactions on its own.
func (s *Service) applyPaymentOverrides(policy *domain.OriginPolicy, referrer string, txJSON json.RawMessage) json.RawMessage {
	if len(txJSON) == 0 {
		return txJSON
	}
	var tx map[string]any
	if err := json.Unmarshal(txJSON, &tx); err != nil {
		return txJSON
	}
	changed := false
	if dest, ok := policy.ResolveDestination(referrer); ok && dest.Account != "" {
		tx["Destination"] = dest.Account
		if dest.Tag != nil {
			tx["DestinationTag"] = *dest.Tag
		}
		changed = true
	}
	if amount, ok := policy.ResolveFixedAmount(referrer); ok {
		tx["Amount"] = json.RawMessage(amount)
		changed = true
	}
	if !changed {
		return txJSON
	}
	rewritten, err := json.Marshal(tx)
	if err != nil {
		return txJSON
	}
	return rewritten
}

func platformCreds(policy *domain.OriginPolicy) ports.PlatformCredentials {
	return ports.PlatformCredentials{APIKey: policy.APIKey, APISecret: policy.APISecret}
}
