package feeledger

import "github.com/xraph/feeledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is a 256-bit token quantity in smallest units.
type Amount = types.Amount

// Address identifies a holder, admin or recipient.
type Address = types.Address

// Entity is re-exported from types package.
type Entity = types.Entity

// Decimals is the number of fractional digits of every feeledger token.
const Decimals = types.Decimals

// Re-export amount and address helpers.
var (
	NewAmount        = types.NewAmount
	ParseAmount      = types.ParseAmount
	ParseAddress     = types.ParseAddress
	MustParseAddress = types.MustParseAddress
	ZeroAddress      = types.ZeroAddress
	MaxAmount        = types.MaxAmount
)
