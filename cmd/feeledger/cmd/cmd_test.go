package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/store"
	"github.com/xraph/feeledger/store/memory"
	"github.com/xraph/feeledger/types"
)

const (
	ownerHex = "0x0000000000000000000000000000000000000001"
	aliceHex = "0x00000000000000000000000000000000000000A1"
	bobHex   = "0x00000000000000000000000000000000000000b0"
)

// survivor outlives the ledger so consecutive commands share it.
type survivor struct{ store.Store }

func (survivor) Close() error { return nil }

func useMemoryStore(t *testing.T) {
	t.Helper()
	shared := survivor{memory.New()}
	prev := openStore
	openStore = func(context.Context, string, string) (store.Store, error) { return shared, nil }
	t.Cleanup(func() { openStore = prev })
}

func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--config", config, "--driver", "memory", "--log-level", "error"}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, config string, args ...string) string {
	t.Helper()
	out, err := run(t, config, args...)
	require.NoError(t, err, out)
	return out
}

func TestCommandsShareRestoredState(t *testing.T) {
	useMemoryStore(t)
	config := filepath.Join(t.TempDir(), "feeledger.yaml")

	out := mustRun(t, config, "init", "--owner", ownerHex, "--percentage-fees", "10", "--symbol", "POOL")
	require.Contains(t, out, "10,000 POOL")
	require.Contains(t, out, "ldg_")

	out = mustRun(t, config, "--as", ownerHex, "transfer", aliceHex, "1000")
	require.Contains(t, out, "fee 0.0000000000000001 POOL")

	out = mustRun(t, config, "--as", ownerHex, "balance", aliceHex)
	require.Contains(t, out, "0.000000000000001 POOL")

	mustRun(t, config, "--as", ownerHex, "admin", "add", aliceHex)

	out = mustRun(t, config, "--as", aliceHex, "proposal", "propose", bobHex, "50", "1")
	require.Contains(t, out, "proposal 0 opened")

	out = mustRun(t, config, "--as", ownerHex, "proposal", "sign", "0")
	require.Contains(t, out, "proposal 0 signed (1/1 signatures)")

	mustRun(t, config, "--as", aliceHex, "proposal", "execute", "0")

	out = mustRun(t, config, "--as", ownerHex, "balance")
	require.Contains(t, out, "collected fees  0.00000000000000005 POOL")

	out = mustRun(t, config, "--as", ownerHex, "events", "--kind", string(event.KindProposalExecuted))
	require.Contains(t, out, "proposal_executed")
	require.Equal(t, 1, strings.Count(out, "\n"))

	out = mustRun(t, config, "--as", ownerHex, "proposal", "list", "--status", "executed")
	require.Contains(t, out, "1 of 1 proposals, 0 open")
}

func TestRejectedOperationReturnsError(t *testing.T) {
	useMemoryStore(t)
	config := filepath.Join(t.TempDir(), "feeledger.yaml")

	mustRun(t, config, "init", "--owner", ownerHex)

	_, err := run(t, config, "--as", aliceHex, "settings", "fees", "5")
	require.ErrorContains(t, err, "caller is not the owner")

	_, err = run(t, config, "--as", ownerHex, "transfer", "not-an-address", "1")
	require.ErrorContains(t, err, "to:")
}

func TestDescribeEvent(t *testing.T) {
	pid := uint64(3)
	e := &event.Event{
		Seq:        9,
		Kind:       event.KindTransfer,
		ProposalID: &pid,
		To:         types.BytesToAddress([]byte{0xb0}),
		Value:      types.MustParseAmount("1500000000000000000000"),
	}
	line := describeEvent(e, "FEE")
	require.Contains(t, line, "1,500 FEE")
	require.Contains(t, line, "payout of #3")

	e = &event.Event{Seq: 10, Kind: event.KindApproval, Value: types.MaxAmount()}
	require.Contains(t, describeEvent(e, "FEE"), "unlimited FEE")
}
