// Package hash provides one-way password hashing for account credentials.
// Digests are self-contained PHC strings: the salt and cost parameters travel
// inside the digest, so verification needs nothing but the digest itself.
package hash

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/image-cloud/api/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	timeCost   = 1
	memoryCost = 64 * 1024
	threads    = 4
	keyLength  = 32
	saltLength = 16
)

// Hash derives an argon2id digest for the given password. The result has the
// form $argon2id$v=19$m=...,t=...,p=...$<salt>$<key> with base64 (raw, std)
// encoded salt and key.
func Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(saltLength)

	key := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, threads, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryCost, timeCost, threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether the password matches the digest. A malformed digest
// never errors or panics; it simply does not match.
func Verify(digest, password string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}
	// cost parameters below these bounds are rejected by the kdf itself
	if t < 1 || p < 1 || m < 8*uint32(p) {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1
}
