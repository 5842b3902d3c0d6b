// Package ingestion turns CCTV image metadata into vector-store points.
// A pipeline run fetches fresh descriptors for a camera, embeds the
// referenced images in one batch, correlates results back by file path
// and upserts each point on a bounded worker pool. A scheduler fires
// runs on a fixed period and skips a firing while the previous run is
// still in flight.
package ingestion
