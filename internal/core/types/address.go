// Package types holds the primitive identifier and amount types shared by the
// exchange engine. Token and account identifiers are opaque fixed-width
// addresses; the engine never interprets them beyond equality and the total
// (lexicographic) order used for pair canonicalization.
package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the width of every identifier handled by the engine.
const AddressLength = 20

// Address is an opaque fixed-width identifier for tokens and accounts.
type Address [AddressLength]byte

// ZeroAddress is the null identifier. It is never a valid token or account.
var ZeroAddress Address

// ParseAddress decodes a hex string (with or without 0x prefix) into an
// Address. The input must encode exactly AddressLength bytes.
func ParseAddress(s string) (Address, error) {
	var a Address

	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != AddressLength {
		return a, fmt.Errorf("invalid address %q: want %d bytes, got %d", s, AddressLength, len(raw))
	}

	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is ParseAddress that panics on malformed input. Intended
// for configuration defaults and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the address as 0x-prefixed lowercase hex.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText renders the address the same way String does, so JSON and
// other text codecs carry hex strings instead of byte arrays.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the textual form accepted by ParseAddress.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsZero reports whether the address is the null identifier.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Cmp compares two addresses under the engine's total order.
func (a Address) Cmp(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts strictly before b.
func (a Address) Less(b Address) bool {
	return a.Cmp(b) < 0
}

// SortPair returns the two addresses in canonical order (lower first). Pair
// order in the public API is irrelevant; every registry key goes through this.
func SortPair(a, b Address) (Address, Address) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}
