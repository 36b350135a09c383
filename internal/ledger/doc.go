// Package ledger records discrete external events — user interactions and
// learned patterns — into bounded FIFO queues (defaults 1000 and 500).
//
// Events bias future derived scores purely through aggregate counts by
// kind; individual records are never read back by the engine. Recording
// into a full queue silently evicts the oldest record. Malformed events
// (empty or non-printable kind, oversized or non-JSON payload) are
// rejected at the boundary with a sentinel error and leave the ledger
// untouched.
package ledger
