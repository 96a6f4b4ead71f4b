package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
)

func TestLoadConfig_Defaults(t *testing.T) {
	library, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, cql.DefaultLibrary, library)
}

func TestLoadConfig_Overrides(t *testing.T) {
	library, err := LoadConfig("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "DiabetesFeasibility", library.Name)
	assert.Equal(t, "0.1.0", library.Version)
	// Unset fields keep their defaults.
	assert.Equal(t, cql.DefaultLibrary.FHIRVersion, library.FHIRVersion)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("library: ["), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
