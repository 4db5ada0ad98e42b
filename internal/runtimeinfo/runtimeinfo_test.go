package runtimeinfo

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		maxProcs int
		want     *bool
	}{
		{"env disables", "0", 1, boolPtr(true)},
		{"env enables", "1", 8, boolPtr(false)},
		{"parallel procs", "", 4, boolPtr(true)},
		{"single proc", "", 1, boolPtr(false)},
		{"unrecognized env falls through", "yes", 2, boolPtr(true)},
		{"unknown", "", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detect(tt.env, tt.maxProcs)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestVersion(t *testing.T) {
	v := Version()
	assert.NotEmpty(t, v)
	assert.False(t, strings.HasPrefix(v, "go"))
}

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("results", "benchmarks-go-1.26.0.json"),
		MicroOutputPath("results", "Go", "1.26.0"))
	assert.Equal(t, filepath.Join("results", "concurrency-go-1.26.0-nogil.json"),
		ConcurrencyOutputPath("results", "Go", "1.26.0", boolPtr(true)))
	assert.Equal(t, filepath.Join("results", "concurrency-go-1.26.0.json"),
		ConcurrencyOutputPath("results", "Go", "1.26.0", nil))
}

func boolPtr(b bool) *bool {
	return &b
}
