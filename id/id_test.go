package id_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
		prefix  string
	}{
		{"EventID", id.NewEventID, id.ParseEventID, "evt_"},
		{"SnapshotID", id.NewSnapshotID, id.ParseSnapshotID, "snap_"},
		{"LedgerID", id.NewLedgerID, id.ParseLedgerID, "ldg_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.newFn()
			require.True(t, strings.HasPrefix(v.String(), tt.prefix), v.String())

			parsed, err := tt.parseFn(v.String())
			require.NoError(t, err)
			require.Equal(t, v.String(), parsed.String())
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	_, err := id.ParseEventID(id.NewSnapshotID().String())
	require.Error(t, err)
	_, err = id.ParseSnapshotID(id.NewLedgerID().String())
	require.Error(t, err)
	_, err = id.ParseLedgerID(id.NewEventID().String())
	require.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	_, err := id.Parse("")
	require.Error(t, err)
	_, err = id.Parse("evt_not-a-suffix")
	require.Error(t, err)
	require.Panics(t, func() { id.MustParse("") })
}

func TestNilID(t *testing.T) {
	var i id.ID
	require.True(t, i.IsNil())
	require.Empty(t, i.String())
	require.Empty(t, string(i.Prefix()))
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewEventID()
	data, err := original.MarshalText()
	require.NoError(t, err)

	var restored id.ID
	require.NoError(t, restored.UnmarshalText(data))
	require.Equal(t, original.String(), restored.String())

	var nilID id.ID
	data, err = nilID.MarshalText()
	require.NoError(t, err)
	var again id.ID
	require.NoError(t, again.UnmarshalText(data))
	require.True(t, again.IsNil())
}

func TestValueScan(t *testing.T) {
	original := id.NewSnapshotID()
	val, err := original.Value()
	require.NoError(t, err)

	var scanned id.ID
	require.NoError(t, scanned.Scan(val))
	require.Equal(t, original.String(), scanned.String())

	var fromBytes id.ID
	require.NoError(t, fromBytes.Scan([]byte(original.String())))
	require.Equal(t, original.String(), fromBytes.String())

	var nilID id.ID
	val, err = nilID.Value()
	require.NoError(t, err)
	require.Nil(t, val)

	require.NoError(t, scanned.Scan(nil))
	require.True(t, scanned.IsNil())
	require.Error(t, scanned.Scan(42))
}

func TestSortable(t *testing.T) {
	a := id.NewEventID()
	b := id.NewEventID()
	require.NotEqual(t, a.String(), b.String())
}
