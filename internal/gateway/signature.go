package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"github.com/rs/zerolog"
)

// SignatureVerifier validates that a webhook body was produced by the
// gateway. The signature is a sha512 digest over the canonical
// concatenation orderRef || statusCode || grossAmount || serverKey.
type SignatureVerifier struct {
	serverKey string
	enabled   bool
	logger    zerolog.Logger
}

// NewSignatureVerifier creates a verifier. Disabling verification is a
// sandbox-only policy and is logged loudly; production must never run with
// enabled=false.
func NewSignatureVerifier(serverKey string, enabled bool, logger zerolog.Logger) *SignatureVerifier {
	l := logger.With().Str("component", "signature_verifier").Logger()
	if !enabled {
		l.Warn().Msg("WEBHOOK SIGNATURE VERIFICATION IS DISABLED - do not run this configuration in production")
	}
	return &SignatureVerifier{
		serverKey: serverKey,
		enabled:   enabled,
		logger:    l,
	}
}

// Verify checks providedSignature against the expected digest using a
// constant-time comparison.
func (v *SignatureVerifier) Verify(orderRef, statusCode, grossAmount, providedSignature string) bool {
	if !v.enabled {
		v.logger.Warn().Str("order_ref", orderRef).Msg("signature verification skipped (disabled by configuration)")
		return true
	}

	sum := sha512.Sum512([]byte(orderRef + statusCode + grossAmount + v.serverKey))
	expected := hex.EncodeToString(sum[:])

	return subtle.ConstantTimeCompare([]byte(expected), []byte(providedSignature)) == 1
}
