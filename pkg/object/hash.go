package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HashSize is the length of a raw digest in bytes.
	HashSize = sha1.Size
	// HashHexSize is the length of a hex-encoded Hash.
	HashHexSize = 2 * HashSize
)

// HashBytes computes the SHA-1 of data and returns it as a lowercase
// hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the envelope "type len\0content". This is
// Git's loose object identity, so ids match `git hash-object`.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(encodeHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ParseHash validates s as a full hex object id. Uppercase input is
// normalized to lowercase.
func ParseHash(s string) (Hash, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != HashHexSize {
		return "", fmt.Errorf("parse hash %q: want %d hex characters, got %d", s, HashHexSize, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("parse hash %q: %w", s, err)
	}
	return Hash(s), nil
}

// Raw returns the binary digest. It panics on a malformed Hash, which can
// only come from bypassing ParseHash.
func (h Hash) Raw() []byte {
	raw, err := hex.DecodeString(string(h))
	if err != nil || len(raw) != HashSize {
		panic(fmt.Sprintf("object: malformed hash %q", string(h)))
	}
	return raw
}

// HashFromRaw hex-encodes a binary digest.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != HashSize {
		return "", fmt.Errorf("raw hash: want %d bytes, got %d", HashSize, len(raw))
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Short returns the first 7 characters, for display.
func (h Hash) Short() string {
	if len(h) > 7 {
		return string(h[:7])
	}
	return string(h)
}
