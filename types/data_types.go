package types

import (
	"math/big"
)

type DataType string

const (
	Null    DataType = "null"
	Int64   DataType = "integer"
	BigInt  DataType = "integer_big" // only produced when the int64 range check is disabled
	Float64 DataType = "number"
	String  DataType = "string"
	Unknown DataType = "unknown"
)

// TypeOf reports the DataType of a value produced by type inference
func TypeOf(value any) DataType {
	switch value.(type) {
	case nil:
		return Null
	case int64:
		return Int64
	case *big.Int:
		return BigInt
	case float64:
		return Float64
	case string:
		return String
	default:
		return Unknown
	}
}
