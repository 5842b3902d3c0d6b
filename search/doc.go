// Package search answers text queries against the ingested image
// vectors, optionally restricted to a datetime range.
package search
