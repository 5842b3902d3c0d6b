package storage

import (
	"testing"
	"time"

	"github.com/poiesic/camvec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportRoundTrip(t *testing.T) {
	report := &core.RunReport{
		StartedAt:  time.Date(2025, 10, 8, 6, 32, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 10, 8, 6, 32, 4, 0, time.UTC),
		Fetched:    20,
		Embedded:   20,
		Upserted:   18,
		Skipped:    2,
		Err:        "",
	}

	decoded, err := UnmarshalRunReport(MarshalRunReport(report))
	require.NoError(t, err)
	assert.Equal(t, report, decoded)
}

func TestRunReportRoundTripWithStageError(t *testing.T) {
	report := &core.RunReport{
		StartedAt:  time.Date(2025, 10, 8, 6, 32, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 10, 8, 6, 32, 1, 0, time.UTC),
		Err:        "metadata service unreachable: connection timed out",
	}

	decoded, err := UnmarshalRunReport(MarshalRunReport(report))
	require.NoError(t, err)
	assert.Equal(t, report.Err, decoded.Err)
	assert.Zero(t, decoded.Fetched)
}

func TestUnmarshalRunReportTruncated(t *testing.T) {
	full := MarshalRunReport(&core.RunReport{
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
		Err:        "some failure text",
	})

	_, err := UnmarshalRunReport(full[:len(full)-4])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
