package sudoemail

import (
	"crypto/sha256"
	"strings"

	"github.com/sudoplatform/sudo-email-go/internal/crypto"
)

// NormalizeAddress lowercases an email address and keeps only the first
// local part and domain. Input without "@" yields the lowercased input.
func NormalizeAddress(address string) string {
	parts := strings.Split(strings.ToLower(address), "@")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[0] + "@" + parts[1]
}

// HashValue returns the standard base64 encoding of the SHA-256 digest of
// value. The output is used as a cross-platform correlation key, so it must
// not change.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return crypto.ToBase64(sum[:])
}

// HashOwnedAddress hashes address scoped to owner.
func HashOwnedAddress(owner, address string) string {
	return HashValue(owner + "|" + NormalizeAddress(address))
}
