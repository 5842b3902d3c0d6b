package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/camvec/core"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := NewJournal("", true)
	require.NoError(t, err)
	t.Cleanup(func() {
		journal.Close()
	})
	return journal
}

func makeReport(upserted int, when time.Time) *core.RunReport {
	return &core.RunReport{
		StartedAt:  when,
		FinishedAt: when.Add(30 * time.Second),
		Fetched:    upserted + 2,
		Embedded:   upserted + 1,
		Upserted:   upserted,
		Skipped:    2,
	}
}

func TestJournalAppendAndRecent(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := journal.Append(ctx, makeReport(i, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	reports, err := journal.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	// Newest first.
	assert.Equal(t, 4, reports[0].Upserted)
	assert.Equal(t, 3, reports[1].Upserted)
	assert.Equal(t, 2, reports[2].Upserted)
}

func TestJournalRecentFewerThanLimit(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	err := journal.Append(ctx, makeReport(7, time.Now().UTC()))
	require.NoError(t, err)

	reports, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 7, reports[0].Upserted)
}

func TestJournalRecentEmpty(t *testing.T) {
	journal := newTestJournal(t)

	reports, err := journal.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestJournalRecentZeroLimit(t *testing.T) {
	journal := newTestJournal(t)

	reports, err := journal.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, reports)
}

func TestJournalPreservesFailureDetail(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	report := makeReport(0, time.Now().UTC())
	report.Err = "embedding service unreachable"
	require.NoError(t, journal.Append(ctx, report))

	reports, err := journal.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "embedding service unreachable", reports[0].Err)
}

func TestJournalDiskBacked(t *testing.T) {
	dir := t.TempDir()
	journal, err := NewJournal(dir, false)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, journal.Append(ctx, makeReport(3, time.Now().UTC())))
	require.NoError(t, journal.Close())

	reopened, err := NewJournal(dir, false)
	require.NoError(t, err)
	defer reopened.Close()

	reports, err := reopened.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Upserted)
}
