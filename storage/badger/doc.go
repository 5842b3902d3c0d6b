// Package badger provides the BadgerDB-backed run journal used to
// record completed ingestion runs for later inspection.
package badger
