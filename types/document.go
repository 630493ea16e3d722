package types

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Field is a single key/value pair of a Document
type Field struct {
	Key   string
	Value any
}

// Document is an ordered set of fields built from one data row. Field order follows the
// header of the file the row came from.
type Document []Field

// Get returns the value stored under key. With a repeated column name the last one wins.
func (d Document) Get(key string) (any, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Key == key {
			return d[i].Value, true
		}
	}
	return nil, false
}

func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for _, field := range d {
		keys = append(keys, field.Key)
	}
	return keys
}

func (d Document) Len() int {
	return len(d)
}

// Map returns an unordered copy of the document, last value winning on repeated keys.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d))
	for _, field := range d {
		m[field.Key] = field.Value
	}
	return m
}

// MarshalJSON encodes the document as a JSON object keeping field order. Non finite floats
// have no JSON form and are written as strings.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, field := range d {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value := field.Value
		if f, ok := value.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
			value = fmt.Sprint(f)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %s", field.Key, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
