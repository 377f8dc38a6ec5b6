package extension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/store/memory"
	"github.com/xraph/feeledger/types"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{})

	require.Equal(t, 100, cfg.JournalBatchSize)
	require.Equal(t, time.Second, cfg.JournalFlushInterval)
	require.Equal(t, "Fee Ledger", cfg.Ledger.Name)
	require.Equal(t, "FEE", cfg.Ledger.Symbol)
	require.Equal(t, uint64(10_000), cfg.Ledger.TotalSupply)
	require.Equal(t, uint64(1), cfg.Ledger.MinimumSignatures)
}

func TestFileConfigTakesPrecedence(t *testing.T) {
	file := Config{Driver: DriverSQLite, JournalBatchSize: 10}
	file.Ledger.Symbol = "POOL"

	prog := DefaultConfig()
	prog.Driver = DriverPostgres
	prog.DisableMigrate = true
	prog.Owner = "0x00000000000000000000000000000000000000a1"
	prog.JournalBatchSize = 500

	cfg := mergeConfigurations(file, prog)

	require.Equal(t, DriverSQLite, cfg.Driver)
	require.Equal(t, 10, cfg.JournalBatchSize)
	require.Equal(t, "POOL", cfg.Ledger.Symbol)
	require.True(t, cfg.DisableMigrate)
	require.Equal(t, prog.Owner, cfg.Owner)
	require.Equal(t, prog.Ledger.Name, cfg.Ledger.Name)
	require.Equal(t, time.Second, cfg.JournalFlushInterval)
}

func TestProgrammaticFeesSurviveFileConfig(t *testing.T) {
	file := Config{}
	file.Ledger.Symbol = "POOL"

	prog := DefaultConfig()
	prog.Ledger.PercentageFees = 7

	cfg := mergeConfigurations(file, prog)
	require.Equal(t, uint64(7), cfg.Ledger.PercentageFees)

	file.Ledger.PercentageFees = 3
	cfg = mergeConfigurations(file, prog)
	require.Equal(t, uint64(3), cfg.Ledger.PercentageFees)
}

func TestLedgerConfigParsesOwner(t *testing.T) {
	e := New(WithConfig(Config{Owner: "0x00000000000000000000000000000000000000a1"}))
	cfg, err := e.ledgerConfig()
	require.NoError(t, err)
	require.Equal(t, types.BytesToAddress([]byte{0xa1}), cfg.Owner)

	e = New(WithConfig(Config{Owner: "not-an-address"}))
	_, err = e.ledgerConfig()
	require.Error(t, err)
}

func TestBuildStore(t *testing.T) {
	s, err := New().buildStore()
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, s)

	_, err = New(WithConfig(Config{Driver: DriverPostgres})).buildStore()
	require.ErrorContains(t, err, "needs a grove database")
}
