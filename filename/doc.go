// Package filename normalizes the identifier strings the CCTV fleet
// has historically produced. Two incompatible encodings of camera id
// and capture time exist in the wild; a pure classification function
// picks the grammar before parsing so the branch logic stays testable
// away from the ingestion pipeline.
//
// The package also owns the canonical datetime contract: the vector
// store's range filters parse the "datetime" payload attribute as a
// timestamp, so its construction from the metadata API's separate date
// and time fields is an exact concatenation, never a reformat.
package filename
