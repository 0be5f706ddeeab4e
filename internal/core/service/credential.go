package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// Argon2id parameters for stored access tokens.
const (
	argon2Time        = 2
	argon2Memory      = 16384
	argon2Parallelism = 2
	argon2KeyLen      = 32
	argon2SaltLen     = 16

	argon2Prefix = "$argon2id$"
)

// HashToken computes an Argon2id hash of token in the format
// $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>.
func HashToken(token string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", domain.ErrInternalServer.WithCause(err)
	}

	hash := argon2.IDKey([]byte(token), salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)

	return "$argon2id$v=19$m=16384,t=2,p=2$" +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(hash), nil
}

// TokenVerifier checks the Authorization header sent by spreadsheet
// clients against the configured tokens. Each configured entry is either a
// plaintext token or an Argon2id hash from HashToken.
type TokenVerifier struct {
	plain  [][]byte
	hashes []string
}

// NewTokenVerifier creates a verifier. Empty entries are ignored.
func NewTokenVerifier(tokens []string) *TokenVerifier {
	v := &TokenVerifier{}
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		switch {
		case t == "":
		case strings.HasPrefix(t, argon2Prefix):
			v.hashes = append(v.hashes, t)
		default:
			v.plain = append(v.plain, []byte(t))
		}
	}
	return v
}

// Enabled reports whether any token is configured.
func (v *TokenVerifier) Enabled() bool {
	return len(v.plain) > 0 || len(v.hashes) > 0
}

// Verify checks an Authorization header value. Both the bare token and
// "Bearer <token>" are accepted.
func (v *TokenVerifier) Verify(header string) error {
	if header == "" {
		return domain.ErrAuthMissing
	}
	presented := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	for _, p := range v.plain {
		if subtle.ConstantTimeCompare([]byte(presented), p) == 1 {
			return nil
		}
	}
	for _, h := range v.hashes {
		if verifyArgon2Hash(presented, h) {
			return nil
		}
	}
	return domain.ErrAuthInvalid
}

// verifyArgon2Hash verifies a secret against an Argon2id hash.
func verifyArgon2Hash(secret, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
