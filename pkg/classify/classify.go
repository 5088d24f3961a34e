// Package classify sorts anonymous program-owned account buffers into typed
// entities. The encoding carries no discriminant tag, so classification is a
// best-effort structural sniff: each layout is tried in a fixed priority
// order and the first strict decode with the initialized flag set wins. The
// strict per-field length caps make false positives unlikely; a false
// negative only costs one "unrecognized" account in a scan.
package classify

import (
	"errors"

	"blocksd/pkg/layout"
)

// Result is a classified account.
type Result struct {
	Kind   layout.Kind
	Entity any
}

// order is the fixed priority in which layouts are tried.
var order = []layout.Kind{
	layout.KindProfile,
	layout.KindPost,
	layout.KindComment,
	layout.KindCommunity,
}

// Classify tries each layout against the buffer and returns the first match.
// ok is false when no layout accepts the buffer or the account is
// uninitialized; decode failures are swallowed here so one bad account never
// aborts a batch scan.
func Classify(buf []byte) (Result, bool) {
	for _, kind := range order {
		entity, err := layout.Decode(kind, buf)
		if err == nil {
			return Result{Kind: kind, Entity: entity}, true
		}
		if errors.Is(err, layout.ErrUninitialized) {
			// Structurally valid but never written: does not exist as any
			// kind, stop probing.
			return Result{}, false
		}
	}
	return Result{}, false
}
