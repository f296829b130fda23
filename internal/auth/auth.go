// Package auth provides the credential primitives shared by every
// authentication workflow: one-way digests of secrets and opaque random
// tokens. Both are stateless and safe for concurrent use.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// tokenBytes is the number of random bytes per token. 32 bytes gives
// 256 bits of entropy, well above the 128-bit floor we require.
const tokenBytes = 32

// Cost returns the bcrypt work factor to use. Fast mode drops to the
// algorithm minimum so test suites don't spend their time hashing.
func Cost(fast bool) int {
	if fast {
		return bcrypt.MinCost
	}
	return bcrypt.DefaultCost
}

// Digest returns a salted one-way hash of secret at the given bcrypt cost.
// Two digests of the same secret differ byte-for-byte (the salt varies)
// but both verify against it.
func Digest(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("digest secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether candidate hashes to digest. An empty or absent
// digest never matches anything; that is a normal false, not an error.
func Verify(digest, candidate string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate)) == nil
}

// NewToken returns a URL-safe opaque token from the process CSPRNG.
// Tokens carry no structure; they exist only to be digested and compared.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
