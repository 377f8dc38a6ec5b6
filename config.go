package feeledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/fee"
	"github.com/xraph/feeledger/types"
)

// Config describes the genesis of a ledger. It is only consulted when
// the store holds no history for the ledger; afterwards the journal and
// snapshots are authoritative.
type Config struct {
	// ID keys the journal and snapshots in the store. Defaults to the
	// lower-cased Symbol.
	ID string `json:"id,omitempty" mapstructure:"id" yaml:"id"`

	Name   string `json:"name" mapstructure:"name" yaml:"name"`
	Symbol string `json:"symbol" mapstructure:"symbol" yaml:"symbol"`

	// TotalSupply is in whole tokens and is scaled by 10^Decimals at
	// genesis.
	TotalSupply uint64 `json:"total_supply" mapstructure:"total_supply" yaml:"total_supply"`

	// PercentageFees is charged on every transfer, in [0, 100].
	PercentageFees uint64 `json:"percentage_fees" mapstructure:"percentage_fees" yaml:"percentage_fees"`

	// MinimumSignatures is the global upper bound for a proposal's
	// signature threshold.
	MinimumSignatures uint64 `json:"minimum_signatures" mapstructure:"minimum_signatures" yaml:"minimum_signatures"`

	// Owner receives the whole supply and is the first admin.
	Owner types.Address `json:"owner" mapstructure:"-" yaml:"owner"`
}

// DefaultConfig returns a Config with sensible defaults. Owner must
// still be set.
func DefaultConfig() Config {
	return Config{
		Name:              "Fee Ledger",
		Symbol:            "FEE",
		TotalSupply:       10_000,
		PercentageFees:    1,
		MinimumSignatures: 1,
	}
}

// Key returns the journal key for the ledger.
func (c Config) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return strings.ToLower(c.Symbol)
}

// Validate reports every problem with the config at once.
func (c Config) Validate() error {
	var problems MultiError
	if strings.TrimSpace(c.Name) == "" {
		problems.Add(ValidationError{Field: "name", Message: "must not be empty"})
	}
	if strings.TrimSpace(c.Symbol) == "" && c.ID == "" {
		problems.Add(ValidationError{Field: "symbol", Message: "must not be empty"})
	}
	if types.IsZero(c.Owner) {
		problems.Add(ValidationError{Field: "owner", Message: "must not be the zero address"})
	}
	if c.PercentageFees > fee.MaxPercentage {
		problems.Add(errs.PercentageFeesTooHigh(c.PercentageFees))
	}
	if c.MinimumSignatures < 1 {
		problems.Add(errs.MinimumSignaturesTooLow(c.MinimumSignatures))
	}
	if !problems.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, errors.Join(problems.Errors...))
}
