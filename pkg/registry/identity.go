package registry

import (
	"encoding/hex"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"
)

// IdentitySize is the byte length of a caller identity.
const IdentitySize = 32

// Identity is an opaque caller token. Only equality is meaningful.
type Identity [IdentitySize]byte

// ErrBadIdentity is returned when a textual identity is not 32 bytes of hex.
var ErrBadIdentity = errors.New("identity must be 64 hex characters")

// IdentityOf derives the identity of an authenticated principal.
func IdentityOf(principal string) Identity {
	return Identity(blake2b.Sum256([]byte(principal)))
}

// ParseIdentity decodes the hex form produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if len(s) != hex.EncodedLen(IdentitySize) {
		return id, ErrBadIdentity
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, errors.Wrap(ErrBadIdentity, err.Error())
	}
	return id, nil
}

func (i Identity) String() string { return hex.EncodeToString(i[:]) }

// IsZero reports whether i is the zero identity (no caller).
func (i Identity) IsZero() bool { return i == Identity{} }

func (i Identity) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Identity) UnmarshalText(b []byte) error {
	id, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}
