package typeutils

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/datazip-inc/tsvingest/constants"
)

var (
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
	// plain decimal literal with a mandatory '.', optional sign and exponent
	floatPattern = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// InferScalar converts raw TSV cell text into nil, int64, float64, *big.Int or string.
//
// Surrounding whitespace is trimmed before classification and strings are returned trimmed.
// Integers with a leading zero or more than 19 digits stay strings so identifiers keep their
// formatting. When int64Only is set, integers outside the signed 64-bit range fall back to
// their text; otherwise they are returned as *big.Int.
//
// InferScalar never fails: text that does not parse as a number is returned as a string.
func InferScalar(value string, int64Only bool) any {
	if value == "" {
		return nil
	}
	v := strings.TrimSpace(value)

	if integerPattern.MatchString(v) {
		digits := strings.TrimPrefix(v, "-")
		if len(digits) > 1 && digits[0] == '0' {
			return v
		}
		if len(digits) > constants.MaxIntegerDigits {
			return v
		}

		parsed, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return parsed
		}
		if int64Only || !errors.Is(err, strconv.ErrRange) {
			return v
		}
		unranged, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return v
		}
		return unranged
	}

	if strings.Contains(v, ".") && floatPattern.MatchString(v) {
		// out of range literals come back as ±Inf or 0 together with ErrRange, keep them
		parsed, err := strconv.ParseFloat(v, 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return parsed
		}
	}

	return v
}
