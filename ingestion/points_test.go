package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/camvec/core"
	"github.com/poiesic/camvec/filename"
)

func testDescriptor() *core.ImageDescriptor {
	return &core.ImageDescriptor{
		ID:          42,
		CameraID:    "cam01",
		Date:        "2025-10-02",
		Time:        "13:11:00",
		Frame:       17,
		VehicleType: 2,
		YoloID:      7,
		Filename:    "cam01_2025-10-02_13:11:00_000017.jpg",
		FilePath:    "/frames/cam01/000017.jpg",
		CreatedAt:   "2025-10-02T13:11:05Z",
	}
}

func TestBuildPointPayload(t *testing.T) {
	now := time.Date(2025, 10, 2, 14, 0, 0, 0, time.UTC)

	point, err := BuildPoint(testDescriptor(), []float32{0.1, 0.2}, now)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), point.ID)
	assert.Equal(t, []float32{0.1, 0.2}, point.Vector)

	assert.Equal(t, "/frames/cam01/000017.jpg", point.Payload["image"])
	assert.Equal(t, "cam01_2025-10-02_13:11:00_000017.jpg", point.Payload["filename"])
	assert.Equal(t, "cam01", point.Payload["camera_id"])
	assert.Equal(t, "2025-10-02T13:11:00Z", point.Payload["datetime"])
	assert.Equal(t, int64(17), point.Payload["frame"])
	assert.Equal(t, int64(2), point.Payload["vehicle_type"])
	assert.Equal(t, int64(7), point.Payload["yolo_id"])
	assert.Equal(t, "2025-10-02T13:11:05Z", point.Payload["created_at"])

	_, hasClass := point.Payload["vehicle_class"]
	assert.False(t, hasClass, "no label means no classifier keys")
}

func TestBuildPointLabelKeys(t *testing.T) {
	desc := testDescriptor()
	desc.Label = &core.Label{ClassName: "truck", Confidence: 0.93}

	point, err := BuildPoint(desc, []float32{0.5}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "truck", point.Payload["vehicle_class"])
	assert.InDelta(t, 0.93, point.Payload["confidence"].(float64), 1e-6)
}

func TestBuildPointCreatedAtDefault(t *testing.T) {
	desc := testDescriptor()
	desc.CreatedAt = ""
	now := time.Date(2025, 10, 2, 14, 30, 0, 0, time.UTC)

	point, err := BuildPoint(desc, []float32{0.5}, now)
	require.NoError(t, err)

	assert.Equal(t, "2025-10-02T14:30:00Z", point.Payload["created_at"])
}

func TestBuildPointDatetimeFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "underscore form with dash time",
			filename: "cctv08_2025-10-08_06-32_4.jpg",
			want:     "2025-10-08T06:32:00Z",
		},
		{
			name:     "dash form",
			filename: "cctv08-2025-10-08-06-32-4.jpg",
			want:     "2025-10-08T06:32:00Z",
		},
		{
			name:     "underscore form with full time",
			filename: "cam01_2025-10-02_13-11-00_000017.jpg",
			want:     "2025-10-02T13:11:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := testDescriptor()
			desc.Date = ""
			desc.Time = ""
			desc.Filename = tt.filename

			point, err := BuildPoint(desc, []float32{0.5}, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.want, point.Payload["datetime"])
		})
	}
}

func TestBuildPointFilenameDatetimeIsParseable(t *testing.T) {
	desc := testDescriptor()
	desc.Date = ""
	desc.Time = ""
	desc.Filename = "cctv08_2025-10-08_06-32_4.jpg"

	point, err := BuildPoint(desc, []float32{0.5}, time.Now())
	require.NoError(t, err)

	// The stored value must satisfy the datetime index, or the point
	// becomes invisible to range filters.
	_, err = filename.ParseRFC3339(point.Payload["datetime"].(string))
	require.NoError(t, err)
}

func TestBuildPointNoDatetimeAnywhere(t *testing.T) {
	desc := testDescriptor()
	desc.Date = ""
	desc.Time = ""
	desc.Filename = "garbage.jpg"

	_, err := BuildPoint(desc, []float32{0.5}, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDatetime)
}

func TestBuildPointEmptyVector(t *testing.T) {
	_, err := BuildPoint(testDescriptor(), nil, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyVector)
}

func TestBuildPointInvalidDescriptor(t *testing.T) {
	desc := testDescriptor()
	desc.FilePath = ""

	_, err := BuildPoint(desc, []float32{0.5}, time.Now())
	require.Error(t, err)
}
