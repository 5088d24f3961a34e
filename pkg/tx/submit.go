package tx

import (
	"context"
)

// Submitter signs, submits and confirms an instruction payload on behalf of
// a wallet. Implementations live outside the core (wallet bridge, test
// fake); the core treats a nil error as "ledger accepted the write" and a
// *ledger.WriteRejectedError as "nothing changed".
type Submitter interface {
	SubmitAndConfirm(ctx context.Context, wallet string, payload []byte) (signature string, err error)
}

// Func adapts a function to the Submitter interface.
type Func func(ctx context.Context, wallet string, payload []byte) (string, error)

// SubmitAndConfirm implements Submitter.
func (f Func) SubmitAndConfirm(ctx context.Context, wallet string, payload []byte) (string, error) {
	return f(ctx, wallet, payload)
}
