package parser

import (
	"github.com/datazip-inc/tsvingest/types"
	"github.com/datazip-inc/tsvingest/utils/typeutils"
)

// NormalizeRow aligns row to header and infers a typed value for every cell. Missing
// trailing cells become null and surplus cells are dropped. A repeated column name yields a
// single field at its first position holding the value of its last occurrence.
func NormalizeRow(header, row []string, opts InferOptions) types.Document {
	doc := make(types.Document, 0, len(header))
	positions := make(map[string]int, len(header))
	for idx, key := range header {
		var value any
		if idx < len(row) {
			value = typeutils.InferScalar(row[idx], opts.Int64Only)
		}
		if pos, found := positions[key]; found {
			doc[pos].Value = value
			continue
		}
		positions[key] = len(doc)
		doc = append(doc, types.Field{Key: key, Value: value})
	}
	return doc
}
