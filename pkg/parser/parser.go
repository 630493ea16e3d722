package parser

// Delimiter separates cells on a TSV line. There is no quoting or escaping convention.
const Delimiter = "\t"

const utf8BOM = "\uFEFF"

// InferOptions holds the knobs of per-value type inference. It is passed explicitly to the
// normalizer so inference has no process-wide state.
type InferOptions struct {
	// Int64Only keeps integers outside the signed 64-bit range as strings
	Int64Only bool `json:"int64_only"`
}

// DefaultInferOptions returns the inference behaviour used when nothing is configured
func DefaultInferOptions() InferOptions {
	return InferOptions{Int64Only: true}
}
