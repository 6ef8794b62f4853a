package config

import (
	"path/filepath"
	"testing"

	"voxelfield/internal/density"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleScenesLoad(t *testing.T) {
	paths, err := filepath.Glob("../../examples/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		f, err := Load(path)
		require.NoError(t, err, path)
		_, err = density.Lookup(f.Density)
		assert.NoError(t, err, path)
		assert.True(t, f.Pause.Set, path)
	}
}
