package account

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the minimum accepted plaintext secret length.
const MinSecretLength = 6

// HashSecret turns a plaintext secret into a salted bcrypt digest. bcrypt
// generates a random per-call salt, so hashing the same secret twice yields
// different digests. The plaintext must never be logged.
func HashSecret(secret string, cost int) (string, error) {
	if len(secret) < MinSecretLength {
		return "", fmt.Errorf("%w: minimum length is %d", ErrInvalidSecret, MinSecretLength)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(digest), nil
}

// VerifySecret checks a candidate secret against a stored digest. A malformed
// digest is treated as "no match", never as an error. The comparison runs in
// constant time relative to the digest contents.
func VerifySecret(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
