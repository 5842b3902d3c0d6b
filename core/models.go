package core

import "time"

// Label is the optional classifier verdict attached to an image by the
// upstream detection pipeline.
type Label struct {
	ClassName  string  `json:"class_name"`
	Confidence float32 `json:"confidence"`
}

// ImageDescriptor is one CCTV metadata record describing an image that
// awaits embedding. The field tags match the metadata API wire format.
// Descriptors are immutable once decoded.
type ImageDescriptor struct {
	ID          uint64 `json:"id"`
	CameraID    string `json:"cctv_id"`
	Date        string `json:"date"` // "2025-10-02"
	Time        string `json:"time"` // "13:11:00"
	Frame       int    `json:"frame"`
	VehicleType int    `json:"vehicle_type"`
	YoloID      int    `json:"yolo_id"`
	Filename    string `json:"filename"`
	FilePath    string `json:"file_path"` // correlation key for embedding results
	Label       *Label `json:"ai_label,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Window is the lookback range a scheduled run fetches.
// Recomputed from "now" on every firing, never persisted.
type Window struct {
	Start time.Time
	Stop  time.Time
}

// apiTimeLayout is the format the metadata API expects for window bounds.
const apiTimeLayout = "2006-01-02 15:04:05"

// StartString returns the window start formatted for the metadata API.
func (w Window) StartString() string {
	return w.Start.Format(apiTimeLayout)
}

// StopString returns the window stop formatted for the metadata API.
func (w Window) StopString() string {
	return w.Stop.Format(apiTimeLayout)
}

// VectorPoint is a single vector-store write record. The ID is the
// source-assigned descriptor id, which makes repeated upserts converge
// instead of duplicating. Payload values are restricted to string,
// int64 and float64.
type VectorPoint struct {
	ID      uint64
	Vector  []float32
	Payload map[string]any
}

// SearchHit is one result from a similarity search over stored points.
type SearchHit struct {
	ID       string
	Filename string
	Datetime string
	Score    float32
}

// RunReport summarizes one pipeline run for the journal.
// Err is empty when all stages completed; per-item failures only
// show up in the Skipped count.
type RunReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Embedded   int
	Upserted   int
	Skipped    int
	Err        string
}
