// Package inspection implements the quality-control ledger: pieces are
// classified against fixed acceptance criteria, approved pieces are packed into
// boxes of BoxCapacity, and a consolidated report is derived on demand.
//
// A Ledger is not safe for concurrent use. Callers that share one across
// goroutines wrap it (see internal/storage).
package inspection
