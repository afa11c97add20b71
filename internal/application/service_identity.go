package application

import (
	"context"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// ResolveWalletUser returns the wallet-issued user id most recently
// associated with a front-end id, or empty when none is known. Lookup errors
// degrade to "unknown" because the result only pre-fills a new request.
func (s *Service) ResolveWalletUser(ctx context.Context, applicationID, frontendID string) string {
	if frontendID == "" {
		return ""
	}
	records, err := s.ownership.ListRecent(ctx, domain.SpaceFrontend, applicationID, frontendID, "", s.cfg.ResolveScanLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "frontend identity lookup failed",
			"module", "application",
			"operation", "resolve_wallet_user",
			"outcome", "failure",
			"application_id", applicationID,
			"error", err,
		)
		return ""
	}
	for _, rec := range records {
		if rec.WalletUserID != "" {
			return rec.WalletUserID
		}
	}
	return ""
}

// ResolveWalletUserByAccount returns the wallet user linked to a ledger
// account. Sign-in records are scanned newest-first because a sign-in event
// is the strongest proof of account linkage; payments may arrive without one,
// so the direct account mapping populated by payment payloads is the
// fallback.
func (s *Service) ResolveWalletUserByAccount(ctx context.Context, applicationID, account string) string {
	if account == "" {
		return ""
	}
	records, err := s.ownership.ListRecent(ctx, domain.SpaceAccount, applicationID, account, domain.PayloadTypeSignIn, s.cfg.ResolveScanLimit)
	if err == nil {
		for _, rec := range records {
			if rec.WalletUserID != "" {
				return rec.WalletUserID
			}
		}
	} else {
		s.logger.WarnContext(ctx, "account identity lookup failed",
			"module", "application",
			"operation", "resolve_wallet_user_by_account",
			"outcome", "failure",
			"application_id", applicationID,
			"error", err,
		)
	}

	walletUserID, err := s.accounts.Lookup(ctx, applicationID, account)
	if err != nil {
		return ""
	}
	return walletUserID
}
