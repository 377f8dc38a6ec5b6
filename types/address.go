package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account holder, admin or proposal recipient.
type Address = common.Address

// ZeroAddress is the null address. It never holds a role and is used
// as the origin of minted and pool-paid transfers.
var ZeroAddress Address

// IsZero reports whether a is the null address.
func IsZero(a Address) bool { return a == ZeroAddress }

// ParseAddress parses a 0x-prefixed (or bare) 40-hex-digit address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("types: invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress is a convenience used by tests and fixtures.
func BytesToAddress(b []byte) Address { return common.BytesToAddress(b) }
