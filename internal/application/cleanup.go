package application

import (
	"context"
	"log/slog"
	"time"
)

// CleanupPendingRequests removes pending records that are past expiry AND
// whose re-fetched payload is expired with no signed transaction data. A
// record whose payload might still resolve is always kept; when in doubt
// (platform unreachable, policy missing) the record survives to the next run.
func (s *Service) CleanupPendingRequests(ctx context.Context) (int, error) {
	records, err := s.pending.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.nowFn()
	removed := 0
	for _, pending := range records {
		if !now.After(pending.ExpiresAt) {
			continue
		}
		policy, err := s.policies.GetByApplication(ctx, pending.ApplicationID)
		if err != nil || policy == nil {
			continue
		}
		details, err := s.platform.Get(ctx, platformCreds(policy), pending.PayloadID)
		if err != nil {
			continue
		}
		if details.Meta.Signed || details.Response.SignedBlobHex != "" {
			// Past expiry but carrying a signature: the webhook may still
			// arrive, never delete these here.
			continue
		}
		if !details.Meta.Expired {
			continue
		}
		if err := s.pending.Delete(ctx, pending.ApplicationID, pending.PayloadID); err != nil {
			s.logger.WarnContext(ctx, "stale pending delete failed",
				"module", "application",
				"operation", "cleanup_pending",
				"outcome", "failure",
				"payload_id", pending.PayloadID,
				"error", err,
			)
			continue
		}
		removed++
	}
	return removed, nil
}

// CleanupWorker periodically sweeps stale pending requests. It mirrors the
// background worker pattern of the rest of the platform: a ticker loop that
// logs per-iteration outcomes and stops on context cancellation.
type CleanupWorker struct {
	logger   *slog.Logger
	service  *Service
	interval time.Duration
}

func NewCleanupWorker(logger *slog.Logger, service *Service, interval time.Duration) *CleanupWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupWorker{logger: logger, service: service, interval: interval}
}

// Run executes the periodic cleanup loop until context cancellation.
func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		removed, err := w.service.CleanupPendingRequests(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "pending cleanup iteration failed",
				"module", "application",
				"operation", "cleanup_pending",
				"outcome", "failure",
				"error", err,
			)
		} else if removed > 0 {
			w.logger.InfoContext(ctx, "stale pending requests removed",
				"module", "application",
				"operation", "cleanup_pending",
				"outcome", "success",
				"removed_count", removed,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
