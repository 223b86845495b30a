package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberDecimalComma(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    float64
		wantPct bool
	}{
		{name: "plain decimal", input: "1234.56", want: 1234.56},
		{name: "scientific", input: "3.4e5", want: 340000},
		{name: "negative exponent", input: "1.47e-4", want: 0.000147},
		{name: "comma decimal", input: "1,5", want: 1.5},
		{name: "percent", input: "12%", want: 0.12, wantPct: true},
		{name: "percent with comma", input: "1,5%", want: 0.015, wantPct: true},
		{name: "spaces stripped", input: "1 000", want: 1000},
		{name: "nbsp stripped", input: "1\u00A0000", want: 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			val, isPct := ParseNumber(tc.input, DecimalComma)
			require.NotNil(t, val)
			assert.InDelta(t, tc.want, *val, 1e-12)
			assert.Equal(t, tc.wantPct, isPct)
		})
	}
}

func TestParseNumberNulls(t *testing.T) {
	for _, input := range []string{"", "   ", "nan", "NaN", "none", "-"} {
		val, isPct := ParseNumber(input, DecimalComma)
		assert.Nil(t, val, "input %q", input)
		assert.False(t, isPct, "input %q", input)
	}
}

func TestParseNumberUnparseable(t *testing.T) {
	val, isPct := ParseNumber("COMIDA", DecimalComma)
	assert.Nil(t, val)
	assert.False(t, isPct)

	// Percent flag survives even when the number itself is garbage.
	val, isPct = ParseNumber("n/a%", DecimalComma)
	assert.Nil(t, val)
	assert.True(t, isPct)

	// Period-grouped input is not valid under the comma-decimal policy.
	val, _ = ParseNumber("1.234,56", DecimalComma)
	assert.Nil(t, val)
}

func TestParseNumberGroupedPeriods(t *testing.T) {
	val, isPct := ParseNumber("1.234,56", GroupedPeriods)
	require.NotNil(t, val)
	assert.InDelta(t, 1234.56, *val, 1e-12)
	assert.False(t, isPct)

	val, _ = ParseNumber("1.000", GroupedPeriods)
	require.NotNil(t, val)
	assert.Equal(t, float64(1000), *val)
}
