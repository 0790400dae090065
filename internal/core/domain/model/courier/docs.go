// Package courier contains the read-only courier model used by the dispatch
// engine: identity, coarse availability status, and the latest GPS position.
// Courier records are owned by external CRUD pages and the GPS reporting
// path; nothing in this engine mutates them.
package courier
