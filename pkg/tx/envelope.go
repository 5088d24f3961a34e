package tx

import (
	"fmt"

	"blocksd/pkg/models"
)

// Envelope frames an instruction payload with the sending wallet for
// sendTransaction. The wallet's signature is attached client-side before the
// frame reaches the node; the gateway never holds keys and forwards the
// frame as built.
func Envelope(wallet string, payload []byte) ([]byte, error) {
	k, err := models.KeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("envelope: bad wallet key: %w", err)
	}
	out := make([]byte, 0, len(k)+len(payload))
	out = append(out, k[:]...)
	out = append(out, payload...)
	return out, nil
}
