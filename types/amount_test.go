package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		plain    string
		human    string
	}{
		{"Zero", "0", 18, "0", "0"},
		{"OneToken", "1000000000000000000", 18, "1", "1"},
		{"Fraction", "1500000000000000000", 18, "1.5", "1.5"},
		{"Dust", "1", 18, "0.000000000000000001", "0.000000000000000001"},
		{"Large", "1234567000000000000000000", 18, "1234567", "1,234,567"},
		{"NoDecimals", "9876543", 0, "9876543", "9,876,543"},
		{"Mixed", "1234567890000000000001", 18, "1234.567890000000000001", "1,234.567890000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MustParseAmount(tt.amount)
			require.Equal(t, tt.plain, FormatUnits(a, tt.decimals))
			require.Equal(t, tt.human, Humanize(a, tt.decimals))
		})
	}
}

func TestScaleWhole(t *testing.T) {
	a, overflow := ScaleWhole(10000, Decimals)
	require.False(t, overflow)
	require.Equal(t, "10000000000000000000000", a.Dec())

	a, overflow = ScaleWhole(0, Decimals)
	require.False(t, overflow)
	require.True(t, a.IsZero())

	// 10^78 > 2^256
	_, overflow = ScaleWhole(1, 78)
	require.True(t, overflow)
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount(" 42 ")
	require.NoError(t, err)
	require.Equal(t, uint64(42), a.Uint64())

	_, err = ParseAmount("")
	require.Error(t, err)

	_, err = ParseAmount("-1")
	require.Error(t, err)

	_, err = ParseAmount("abc")
	require.Error(t, err)

	require.Panics(t, func() { MustParseAmount("x") })
}

func TestSum(t *testing.T) {
	total, overflow := Sum(NewAmount(1), nil, NewAmount(2), NewAmount(3))
	require.False(t, overflow)
	require.Equal(t, uint64(6), total.Uint64())

	_, overflow = Sum(MaxAmount(), NewAmount(1))
	require.True(t, overflow)
}

func TestCloneDoesNotAlias(t *testing.T) {
	a := NewAmount(5)
	b := Clone(a)
	b.AddUint64(b, 1)
	require.Equal(t, uint64(5), a.Uint64())
	require.Equal(t, uint64(6), b.Uint64())
	require.True(t, Clone(nil).IsZero())
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	require.False(t, IsZero(a))

	_, err = ParseAddress("0x1234")
	require.Error(t, err)

	require.True(t, IsZero(ZeroAddress))
	require.Equal(t, a, MustParseAddress("00000000000000000000000000000000000000AA"))
}
