package typeutils

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferScalar(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected any
	}{
		{name: "empty is null", value: "", expected: nil},
		{name: "plain integer", value: "42", expected: int64(42)},
		{name: "negative integer", value: "-17", expected: int64(-17)},
		{name: "zero", value: "0", expected: int64(0)},
		{name: "negative zero", value: "-0", expected: int64(0)},
		{name: "leading zero kept as text", value: "007", expected: "007"},
		{name: "negative leading zero kept as text", value: "-007", expected: "-007"},
		{name: "leading plus is not an integer", value: "+5", expected: "+5"},
		{name: "int64 max", value: "9223372036854775807", expected: int64(math.MaxInt64)},
		{name: "int64 min", value: "-9223372036854775808", expected: int64(math.MinInt64)},
		{name: "above int64 max falls back to text", value: "9223372036854775808", expected: "9223372036854775808"},
		{name: "below int64 min falls back to text", value: "-9223372036854775809", expected: "-9223372036854775809"},
		{name: "twenty digits", value: "12345678901234567890", expected: "12345678901234567890"},
		{name: "twenty digits negative", value: "-12345678901234567890", expected: "-12345678901234567890"},
		{name: "float", value: "3.14", expected: 3.14},
		{name: "trailing dot float", value: "3.", expected: 3.0},
		{name: "leading dot float", value: ".5", expected: 0.5},
		{name: "signed float", value: "-2.5", expected: -2.5},
		{name: "exponent float", value: "1.5e3", expected: 1500.0},
		{name: "lone dot", value: ".", expected: "."},
		{name: "signed lone dot", value: "-.", expected: "-."},
		{name: "two dots", value: "1.2.3", expected: "1.2.3"},
		{name: "hex float is text", value: "0x1.8p1", expected: "0x1.8p1"},
		{name: "exponent without dot is text", value: "1e5", expected: "1e5"},
		{name: "plain text", value: "hello", expected: "hello"},
		{name: "version string", value: "v1.2", expected: "v1.2"},
		{name: "huge float overflows to infinity", value: "1.0e999", expected: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferScalar(tt.value, true))
		})
	}
}

func TestInferScalarTrimsWhitespace(t *testing.T) {
	assert.Equal(t, int64(12), InferScalar("  12 ", true))
	assert.Equal(t, 1.25, InferScalar("\t1.25\t", true))
	assert.Equal(t, "padded text", InferScalar("  padded text  ", true), "strings are returned trimmed")
	assert.Equal(t, "007", InferScalar(" 007 ", true))
	assert.Equal(t, "", InferScalar("   ", true), "whitespace only is an empty string, not null")
}

func TestInferScalarWithoutInt64Check(t *testing.T) {
	value := InferScalar("9223372036854775808", false)
	unranged, ok := value.(*big.Int)
	require.True(t, ok, "expected *big.Int, got %T", value)
	assert.Equal(t, "9223372036854775808", unranged.String())

	value = InferScalar("-9999999999999999999", false)
	unranged, ok = value.(*big.Int)
	require.True(t, ok, "expected *big.Int, got %T", value)
	assert.Equal(t, "-9999999999999999999", unranged.String())

	// the digit count and leading zero rules still apply
	assert.Equal(t, "12345678901234567890", InferScalar("12345678901234567890", false))
	assert.Equal(t, "007", InferScalar("007", false))
	assert.Equal(t, int64(5), InferScalar("5", false))
}

func TestInferScalarNeverPanics(t *testing.T) {
	inputs := []string{
		"-", "--1", "1-", "..", "e", "1e", "1.e", ".e1", "NaN", "Inf", "-Inf", "1_000.5",
		"\x00", "١٢٣", "１２３", strings.Repeat("9", 400), "0.0.0", "\t", "\n",
		"-" + strings.Repeat("0", 30), strings.Repeat("1", 19) + ".5",
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() {
			switch InferScalar(input, true).(type) {
			case nil, int64, float64, string:
			default:
				t.Errorf("unexpected type for %q", input)
			}
		})
	}
}
