package application

import (
	"log/slog"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// Config carries the tunable behavior of the core engine.
type Config struct {
	// PendingTTL bounds how long a pending request is expected to stay
	// unresolved before the cleanup worker may consider it stale.
	PendingTTL time.Duration
	// ResolveScanLimit caps how many ownership records the identity
	// resolver walks when searching for a known wallet user.
	ResolveScanLimit int
}

// Service is the payload ownership and ledger validation engine. All
// collaborators are injected through ports; nothing here holds ambient state.
type Service struct {
	cfg       Config
	logger    *slog.Logger
	ownership ports.OwnershipRepository
	accounts  ports.AccountMappingRepository
	policies  ports.PolicyCache
	pending   ports.PendingRequestStore
	platform  ports.WalletPlatformClient
	escrow    ports.EscrowClient
	verifier  *LedgerVerifier
	tokens    ports.TokenVerifier
	events    ports.EventPublisher
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Logger    *slog.Logger
	Ownership ports.OwnershipRepository
	Accounts  ports.AccountMappingRepository
	Policies  ports.PolicyCache
	Pending   ports.PendingRequestStore
	Platform  ports.WalletPlatformClient
	Escrow    ports.EscrowClient
	Verifier  *LedgerVerifier
	Tokens    ports.TokenVerifier
	Events    ports.EventPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 15 * time.Minute
	}
	if cfg.ResolveScanLimit <= 0 {
		cfg.ResolveScanLimit = 50
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		logger:    logger,
		ownership: deps.Ownership,
		accounts:  deps.Accounts,
		policies:  deps.Policies,
		pending:   deps.Pending,
		platform:  deps.Platform,
		escrow:    deps.Escrow,
		verifier:  deps.Verifier,
		tokens:    deps.Tokens,
		events:    deps.Events,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// ResetCache drops every cached tenant policy. The next read reloads lazily;
// stale reads between a policy write and the reset are an accepted trade-off.
func (s *Service) ResetCache() {
	s.policies.Invalidate()
	s.logger.Info("policy cache invalidated",
		"module", "application",
		"operation", "reset_cache",
		"outcome", "success",
	)
}
