package store

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/snapshot"
	"github.com/xraph/feeledger/types"
)

// Column encodings shared by the SQL and document backends. Amounts are
// decimal strings and addresses are checksummed hex, so stored rows
// stay readable and portable across databases.

func EncodeAmount(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return v.Dec()
}

func DecodeAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // absent value
	}
	v, err := types.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("store: decode amount: %w", err)
	}
	return v, nil
}

func EncodeAddress(a types.Address) string {
	if types.IsZero(a) {
		return ""
	}
	return a.Hex()
}

func DecodeAddress(s string) (types.Address, error) {
	if s == "" {
		return types.ZeroAddress, nil
	}
	a, err := types.ParseAddress(s)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("store: decode address: %w", err)
	}
	return a, nil
}

// EncodeState serializes a snapshot payload as JSON.
func EncodeState(st snapshot.State) (string, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("store: encode snapshot: %w", err)
	}
	return string(b), nil
}

func DecodeState(s string) (snapshot.State, error) {
	var st snapshot.State
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return snapshot.State{}, fmt.Errorf("store: decode snapshot: %w", err)
	}
	return st, nil
}
