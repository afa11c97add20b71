package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// VerifyOutcome is the verifier's verdict for one transaction reference.
// Failing to confirm after exhausting every fallback is a definitive
// Confirmed=false, never an error.
type VerifyOutcome struct {
	Confirmed bool
	Testnet   bool
	Account   string
}

// LedgerVerifier confirms that a signed payment really settled. Each network
// carries an explicit ordered provider chain (primary node, secondary node,
// REST lookup); attempts are bounded by a timeout and unavailability falls
// through to the next source. Mainnet is always tried fully before testnet.
type LedgerVerifier struct {
	logger         *slog.Logger
	mainnet        []ports.LedgerProvider
	testnet        []ports.LedgerProvider
	attemptTimeout time.Duration
}

func NewLedgerVerifier(logger *slog.Logger, mainnet, testnet []ports.LedgerProvider, attemptTimeout time.Duration) *LedgerVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 8 * time.Second
	}
	return &LedgerVerifier{
		logger:         logger,
		mainnet:        mainnet,
		testnet:        testnet,
		attemptTimeout: attemptTimeout,
	}
}

// Verify runs the full verification state machine for a transaction hash.
func (v *LedgerVerifier) Verify(ctx context.Context, hash string, expected domain.ExpectedPayment) VerifyOutcome {
	if hash == "" {
		return VerifyOutcome{}
	}

	if tx, found := v.lookup(ctx, v.mainnet, hash); found && expected.Accepts(tx) {
		return VerifyOutcome{Confirmed: true, Account: tx.Account}
	}
	if tx, found := v.lookup(ctx, v.testnet, hash); found && expected.Accepts(tx) {
		return VerifyOutcome{Confirmed: true, Testnet: true, Account: tx.Account}
	}
	return VerifyOutcome{}
}

// lookup walks one network's provider chain until a provider yields a
// definitive answer: either the transaction, or a confirmed absence
// (domain.ErrNotFound). Everything else counts as unavailability.
func (v *LedgerVerifier) lookup(ctx context.Context, providers []ports.LedgerProvider, hash string) (domain.LedgerTransaction, bool) {
	for _, provider := range providers {
		attemptCtx, cancel := context.WithTimeout(ctx, v.attemptTimeout)
		tx, err := provider.LookupTransaction(attemptCtx, hash)
		cancel()

		if err == nil {
			return tx, true
		}
		if errors.Is(err, domain.ErrNotFound) {
			v.logger.DebugContext(ctx, "transaction not on ledger",
				"module", "application",
				"operation", "ledger_lookup",
				"provider", provider.Name(),
			)
			return domain.LedgerTransaction{}, false
		}
		v.logger.WarnContext(ctx, "ledger provider unavailable, trying next",
			"module", "application",
			"operation", "ledger_lookup",
			"outcome", "failure",
			"provider", provider.Name(),
			"error", err,
		)
	}
	return domain.LedgerTransaction{}, false
}
