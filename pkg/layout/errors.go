package layout

import (
	"errors"
	"fmt"
)

// ErrUninitialized marks a buffer that decodes cleanly but whose leading
// initialized flag is zero: the account was allocated and never written, so
// the entity does not exist. It is not a decode failure.
var ErrUninitialized = errors.New("account not initialized")

// DecodeError reports a structural mismatch between a buffer and a layout.
// It is always recoverable: callers trying layouts speculatively treat it as
// "not this kind" and move on.
type DecodeError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: field %s: %s", e.Kind, e.Field, e.Reason)
}

// IsDecodeError reports whether err is a layout mismatch.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func errTruncated(kind Kind, field string, pos int) error {
	return &DecodeError{Kind: kind, Field: field, Reason: fmt.Sprintf("buffer truncated at offset %d", pos)}
}

func errOverLength(kind Kind, field string, got, max int) error {
	return &DecodeError{Kind: kind, Field: field, Reason: fmt.Sprintf("declared length %d exceeds cap %d", got, max)}
}

func errInvalidUTF8(kind Kind, field string) error {
	return &DecodeError{Kind: kind, Field: field, Reason: "payload is not valid UTF-8"}
}

func errInvalidBool(kind Kind, field string, b byte) error {
	return &DecodeError{Kind: kind, Field: field, Reason: fmt.Sprintf("bool byte %d outside 0/1", b)}
}
