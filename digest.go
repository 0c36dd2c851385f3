package md5vault

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vaultsandbox/md5vault/internal/md5"
)

// Size is the length of a digest in bytes.
const Size = md5.Size

// Digest is a 128-bit MD5 digest. Its text form is 32 lowercase hex
// characters, the same form the store persists.
type Digest [Size]byte

// Sum returns the MD5 digest of data.
func Sum(data []byte) Digest {
	return Digest(md5.Sum(data))
}

// SumString returns the MD5 digest of the UTF-8 bytes of s.
func SumString(s string) Digest {
	return Sum([]byte(s))
}

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns a copy of the raw digest bytes.
func (d Digest) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, d[:])
	return b
}

// ParseDigest parses the 32-character lowercase hex form of a digest.
// Uppercase hex is rejected so that stored and recomputed strings compare
// equal byte for byte.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) != 2*Size {
		return d, fmt.Errorf("%w: length %d, expected %d", ErrInvalidDigest, len(s), 2*Size)
	}
	if i := strings.IndexAny(s, "ABCDEF"); i >= 0 {
		return d, fmt.Errorf("%w: uppercase character %q at %d", ErrInvalidDigest, s[i], i)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("%w: %w", ErrInvalidDigest, err)
	}
	return d, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
