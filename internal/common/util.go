package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString generates size random bytes and returns them hex-encoded,
// so the resulting string is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size random bytes, or nil if the system
// random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil
	}
	return b
}

// WipeByteArray overwrites b with zeros. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// keyAlphabet is base32 without the easily confused I, L, O and U.
const keyAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// MakeCredentialKey returns a key in the form PREFIX-XXXX-XXXX-XXXX-XXXX
// with groups drawn from keyAlphabet.
func MakeCredentialKey(prefix string, groups int) (string, error) {
	b := make([]byte, groups*4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for i, c := range b {
		if i%4 == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(keyAlphabet[int(c)%len(keyAlphabet)])
	}
	return sb.String(), nil
}

// NormalizeCredentialKey upper-cases and trims a user-entered key.
func NormalizeCredentialKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
