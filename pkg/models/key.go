package models

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// KeySize is the raw length of a ledger public key.
const KeySize = 32

// Key is a raw 32-byte ledger public key. It serializes as base58 in JSON
// so API payloads carry the same address form the RPC node uses.
type Key [KeySize]byte

var zeroKey Key

// KeyFromBase58 parses a base58 address into a Key.
func KeyFromBase58(s string) (Key, error) {
	var k Key
	b, err := base58.Decode(s)
	if err != nil {
		return k, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) != KeySize {
		return k, fmt.Errorf("invalid address %q: %d bytes", s, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// String returns the base58 form of the key.
func (k Key) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether the key is all zero bytes.
func (k Key) IsZero() bool {
	return k == zeroKey
}

// MarshalJSON encodes the key as a base58 string.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a base58 string into the key.
func (k *Key) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := KeyFromBase58(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
