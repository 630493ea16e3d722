package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&sample{Name: "x", Count: 1}))
	assert.Error(t, Validate(&sample{Count: 1}))
	assert.Error(t, Validate(&sample{Name: "x", Count: -1}))
}

func TestUnmarshalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"orders","count":3}`), 0o600))

	var got sample
	require.NoError(t, UnmarshalFile(path, &got))
	assert.Equal(t, sample{Name: "orders", Count: 3}, got)

	err := UnmarshalFile(filepath.Join(t.TempDir(), "missing.json"), &got)
	assert.ErrorContains(t, err, "does not exist")

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))
	assert.ErrorContains(t, UnmarshalFile(broken, &got), "failed to unmarshal")
}

func TestULIDIsMonotonic(t *testing.T) {
	first := ULID()
	second := ULID()
	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}

func TestTernary(t *testing.T) {
	assert.Equal(t, "a", Ternary(true, "a", "b").(string))
	assert.Equal(t, "b", Ternary(false, "a", "b").(string))
}

func TestUnmarshal(t *testing.T) {
	var got sample
	require.NoError(t, Unmarshal(map[string]any{"name": "x", "count": 2}, &got))
	assert.Equal(t, sample{Name: "x", Count: 2}, got)

	assert.Error(t, Unmarshal(make(chan int), &got))
}
