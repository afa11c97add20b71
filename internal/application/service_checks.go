package application

import (
	"context"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// CheckSignIn validates a resolved sign-in payload for the calling identity.
// A failed ownership check and a missing payload look identical to the
// caller: success=false with no further detail.
func (s *Service) CheckSignIn(ctx context.Context, req CheckRequest) SignInCheckResult {
	if !s.ownsPayload(ctx, req, domain.PayloadTypeSignIn) {
		return SignInCheckResult{}
	}

	details, err := s.GetPayload(ctx, req.Origin, req.ApplicationID, req.PayloadID)
	if err != nil {
		return SignInCheckResult{}
	}
	if !details.Meta.Resolved || !details.Meta.Signed {
		return SignInCheckResult{}
	}
	return SignInCheckResult{
		Success:      true,
		Account:      details.Response.Account,
		WalletUserID: details.Application.IssuedUserToken,
	}
}

// CheckPayment validates a payment payload immediately, without a validation
// window. Settlement is re-verified on the ledger; the platform's word alone
// is never trusted.
func (s *Service) CheckPayment(ctx context.Context, req CheckRequest) domain.TransactionCheckResult {
	return s.checkPayment(ctx, req, false)
}

// CheckTimedPayment additionally enforces the tenant's validation window:
// proofs outside the window report payloadExpired, tenants with no window
// configured report the configuration gap distinctly.
func (s *Service) CheckTimedPayment(ctx context.Context, req CheckRequest) domain.TransactionCheckResult {
	return s.checkPayment(ctx, req, true)
}

func (s *Service) checkPayment(ctx context.Context, req CheckRequest, timed bool) domain.TransactionCheckResult {
	if !s.ownsPayload(ctx, req, domain.PayloadTypePayment) {
		return domain.TransactionCheckResult{}
	}

	policy, err := s.policies.GetByOriginAndApplication(ctx, req.Origin, req.ApplicationID)
	if err != nil || policy == nil {
		return domain.TransactionCheckResult{Error: true}
	}
	details, err := s.platform.Get(ctx, platformCreds(policy), req.PayloadID)
	if err != nil {
		s.logger.WarnContext(ctx, "payload fetch failed during payment check",
			"module", "application",
			"operation", "check_payment",
			"outcome", "failure",
			"payload_id", req.PayloadID,
			"error", err,
		)
		return domain.TransactionCheckResult{Error: true}
	}
	// An invalid signature and an unsigned payload collapse into the same
	// generic failure.
	if !details.Meta.Resolved || !details.Meta.Signed {
		return domain.TransactionCheckResult{}
	}

	result := domain.TransactionCheckResult{TxID: details.Response.TxID}

	if timed {
		window, configured := policy.ResolveWindow(req.Referrer)
		if !configured {
			result.NoValidationWindow = true
			return result
		}
		if !domain.WithinWindow(details.Response.ResolvedAt, window, s.nowFn()) {
			result.PayloadExpired = true
			return result
		}
	}

	// A sign-in routed into the payment bucket (signinToValidate) proves
	// entitlement by its signature alone; there is no ledger transaction.
	if domain.NormalizePayloadType(details.Payload.TxType) == domain.PayloadTypeSignIn {
		result.Success = true
		result.Account = details.Response.Account
		return result
	}
	if details.Response.TxID == "" {
		return result
	}

	expected := domain.ExpectedPayment{
		Destination:    details.Payload.RequestedDestination,
		DestinationTag: details.Payload.RequestedDestinationTag,
	}
	amount, err := domain.ParseExpectedAmount(details.Payload.RequestedAmount)
	if err != nil {
		// A mangled expectation must never degrade into "accept any amount".
		s.logger.WarnContext(ctx, "malformed requested amount on payload",
			"module", "application",
			"operation", "check_payment",
			"outcome", "failure",
			"payload_id", req.PayloadID,
			"error", err,
		)
		result.Error = true
		return result
	}
	expected.Amount = amount

	outcome := s.verifier.Verify(ctx, details.Response.TxID, expected)
	result.Success = outcome.Confirmed
	result.Testnet = outcome.Testnet
	result.Account = outcome.Account
	return result
}

// CheckEscrowPayment verifies the payment and, on success, records the
// downstream escrow execution entry. A testnet escrow may be satisfied by
// either network; a mainnet escrow only by mainnet.
func (s *Service) CheckEscrowPayment(ctx context.Context, req EscrowCheckRequest) domain.TransactionCheckResult {
	result := s.checkPayment(ctx, req.CheckRequest, false)
	if !result.Success {
		return result
	}
	if result.Account != req.Account {
		result.Success = false
		return result
	}
	if !req.Testnet && result.Testnet {
		result.Success = false
		return result
	}

	key := ports.EscrowKey{Account: req.Account, Sequence: req.Sequence, Testnet: req.Testnet}
	if err := s.escrow.Add(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "escrow record add failed",
			"module", "application",
			"operation", "check_escrow_payment",
			"outcome", "failure",
			"account", req.Account,
			"sequence", req.Sequence,
			"error", err,
		)
		result.Success = false
		result.Error = true
	}
	return result
}

// ownsPayload runs the ownership check for the exact tuple and, when no
// referrer was supplied, aggregated across referrers. The catch-all bucket is
// consulted as well because older records may predate type partitioning.
func (s *Service) ownsPayload(ctx context.Context, req CheckRequest, payloadType string) bool {
	for _, pt := range []string{payloadType, domain.PayloadTypeAny} {
		q := ports.OwnershipQuery{
			Space:         domain.SpaceFrontend,
			Origin:        req.Origin,
			Referrer:      req.Referrer,
			ApplicationID: req.ApplicationID,
			IdentityValue: req.FrontendID,
			PayloadType:   pt,
		}
		if s.IsOwner(ctx, q, req.PayloadID) {
			return true
		}
	}
	return false
}
