package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
)

func TestBlockRecordsEntryAndAudit(t *testing.T) {
	repo := newMemBlocks()
	sink := &memReports{}
	blocks := NewBlocks(repo, sink, logger.NewLogger("test"))
	ctx := context.Background()

	require.NoError(t, blocks.Block(ctx, "alice", "bob", "spam"))

	_, ok := repo.entries["alice"]["bob"]
	assert.True(t, ok)
	require.Len(t, sink.reports, 1)
	assert.Equal(t, domain.ReportKindBlock, sink.reports[0].Kind)
	assert.Equal(t, "alice", sink.reports[0].ReporterID)
	assert.Equal(t, "bob", sink.reports[0].SubjectID)
}

func TestBlockSelf(t *testing.T) {
	repo := newMemBlocks()
	sink := &memReports{}
	blocks := NewBlocks(repo, sink, logger.NewLogger("test"))

	err := blocks.Block(context.Background(), "alice", "alice", "")
	assert.ErrorIs(t, err, domain.ErrSelfBlock)
	assert.Empty(t, repo.entries)
	assert.Empty(t, sink.reports)
}

func TestBlockWithoutIdentityIsNoOp(t *testing.T) {
	repo := newMemBlocks()
	sink := &memReports{}
	blocks := NewBlocks(repo, sink, logger.NewLogger("test"))

	require.NoError(t, blocks.Block(context.Background(), "", "bob", ""))
	assert.Empty(t, repo.entries)
	assert.Empty(t, sink.reports)
}

func TestBlockWritesAreIndependent(t *testing.T) {
	repo := newMemBlocks()
	repo.failAll = true
	sink := &memReports{}
	blocks := NewBlocks(repo, sink, logger.NewLogger("test"))

	// Block write fails; the audit record is still attempted and the caller
	// still gets nil.
	require.NoError(t, blocks.Block(context.Background(), "alice", "bob", "spam"))
	assert.Len(t, sink.reports, 1)

	repo.failAll = false
	sink.fail = true
	require.NoError(t, blocks.Block(context.Background(), "alice", "carol", "spam"))
	_, ok := repo.entries["alice"]["carol"]
	assert.True(t, ok)
}

func TestFetchBlockedDegradesToEmpty(t *testing.T) {
	repo := newMemBlocks()
	blocks := NewBlocks(repo, &memReports{}, logger.NewLogger("test"))
	ctx := context.Background()

	require.NoError(t, blocks.Block(ctx, "alice", "bob", ""))

	assert.Contains(t, blocks.FetchBlocked(ctx, "alice"), "bob")
	assert.Empty(t, blocks.FetchBlocked(ctx, ""))

	repo.failAll = true
	assert.Empty(t, blocks.FetchBlocked(ctx, "alice"), "a read failure hides nothing")
}
