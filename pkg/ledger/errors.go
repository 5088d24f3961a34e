package ledger

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the RPC node sheds load (HTTP 429 or the
// node's rate-limit error code). Callers back off and retry; after bounded
// retries the operation degrades to a partial result.
var ErrRateLimited = errors.New("rpc rate limited")

// ErrNotFound is returned when an address has no account. It means "entity
// does not exist", not a failure.
var ErrNotFound = errors.New("account not found")

// rpcErrRateLimit is the node-side error code for shed requests.
const rpcErrRateLimit = -32005

// WriteRejectedError is a ledger refusal of a submitted write (insufficient
// funds, program not found, program-level rejection). It is surfaced to the
// caller untouched and never retried automatically: state-changing writes
// must not be submitted twice.
type WriteRejectedError struct {
	Code    int
	Message string
}

func (e *WriteRejectedError) Error() string {
	return fmt.Sprintf("write rejected (%d): %s", e.Code, e.Message)
}

// IsWriteRejected reports whether err is a ledger write refusal.
func IsWriteRejected(err error) bool {
	var we *WriteRejectedError
	return errors.As(err, &we)
}

// rpcError is the JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// nodeError is a non-rate-limit JSON-RPC error from the node, kept typed so
// the write path can translate a submission refusal.
type nodeError struct {
	method  string
	code    int
	message string
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("rpc %s: node error %d: %s", e.method, e.code, e.message)
}
