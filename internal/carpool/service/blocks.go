package service

import (
	"context"
	"fmt"
	"time"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
)

// Blocks is the per-user block registry. Blocking is advisory UI state, not
// a safety invariant: writes are best-effort and reads never fail the
// caller.
type Blocks struct {
	blocks  domain.BlockRepository
	reports domain.ReportSink
	log     logger.Logger
}

func NewBlocks(blocks domain.BlockRepository, reports domain.ReportSink, log logger.Logger) *Blocks {
	return &Blocks{blocks: blocks, reports: reports, log: log}
}

// Block hides blockedID's messages from the caller. An unauthenticated
// caller is a logged no-op. The block entry and the moderation audit record
// are two independent writes; either one failing does not undo or retry the
// other.
func (b *Blocks) Block(ctx context.Context, callerID, blockedID, reason string) error {
	if callerID == "" {
		b.log.Info("block_skipped", "Block attempt without authenticated caller")
		return nil
	}
	if callerID == blockedID {
		return domain.ErrSelfBlock
	}

	entry := domain.BlockEntry{
		BlockerID: callerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.blocks.Save(ctx, entry); err != nil {
		b.log.Error("block_write_failed", fmt.Errorf("block %s -> %s: %w", callerID, blockedID, err))
	}

	report := domain.Report{
		Kind:       domain.ReportKindBlock,
		ReporterID: callerID,
		SubjectID:  blockedID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := b.reports.Append(ctx, report); err != nil {
		b.log.Error("block_audit_failed", fmt.Errorf("audit record for block of %s: %w", blockedID, err))
	}

	return nil
}

// FetchBlocked returns the caller's blocked set. No identity or a read
// failure yields an empty set, never an error: absent information means
// nothing is hidden.
func (b *Blocks) FetchBlocked(ctx context.Context, blockerID string) map[string]struct{} {
	if blockerID == "" {
		return map[string]struct{}{}
	}

	blocked, err := b.blocks.FetchBlocked(ctx, blockerID)
	if err != nil {
		b.log.Error("fetch_blocked_failed", err)
		return map[string]struct{}{}
	}
	return blocked
}
