package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePaths(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		baseDir string
		want    string
	}{
		{"absolute unchanged", "/abs/results", "/base", "/abs/results"},
		{"relative joined", "results", "/base", "/base/results"},
		{"nested relative", "docker/images", "/base", "/base/docker/images"},
		{"parent relative", "../parent", "/base/sub", "/base/parent"},
		{"dot is base", ".", "/base", "/base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.path
			ResolvePaths(tt.baseDir, &p)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestResolvePaths_SeveralAndNil(t *testing.T) {
	results, root := "results", "/srv/docker"
	ResolvePaths("/proj", &results, nil, &root)
	assert.Equal(t, "/proj/results", results)
	assert.Equal(t, "/srv/docker", root)
}
