// Package kernel contains shared value objects used across the dispatch
// domain model.
//
// The package provides:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint: validated geographic coordinates with great-circle distance
//
// All value objects are immutable, created through validating constructors,
// and safe for concurrent use. Zero values are invalid and rejected by
// Validate methods.
package kernel
