package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrilink/marketplace/modules/notifications/domain"
)

// deliver sends notice once per event id. A failed delivery releases the
// claim so a redelivered event can retry.
func deliver(ctx context.Context, dedup domain.Deduplicator, notifier domain.Notifier, logger *slog.Logger, notice domain.Notice) error {
	first, err := dedup.Claim(ctx, notice.EventID)
	if err != nil {
		return fmt.Errorf("claiming event %s: %w", notice.EventID, err)
	}
	if !first {
		logger.DebugContext(ctx, "duplicate event skipped",
			slog.String("event_id", notice.EventID),
			slog.String("kind", string(notice.Kind)),
		)
		return nil
	}

	if err := notifier.Notify(ctx, notice); err != nil {
		if relErr := dedup.Release(ctx, notice.EventID); relErr != nil {
			logger.WarnContext(ctx, "failed to release event claim",
				slog.String("event_id", notice.EventID),
				slog.Any("error", relErr),
			)
		}
		return fmt.Errorf("sending %s notice: %w", notice.Kind, err)
	}
	return nil
}
