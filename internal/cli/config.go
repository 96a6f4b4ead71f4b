package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
)

// Config is the translator configuration file format.
type Config struct {
	Library LibraryConfig `yaml:"library"`
}

// LibraryConfig configures the header of rendered CQL libraries.
type LibraryConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	FHIRVersion string `yaml:"fhirVersion"`
}

// LoadConfig reads a YAML configuration file and resolves it against the
// default library header. An empty path yields the defaults.
func LoadConfig(path string) (cql.Library, error) {
	library := cql.DefaultLibrary
	if path == "" {
		return library, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cql.Library{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return cql.Library{}, fmt.Errorf("parsing config: %w", err)
	}

	if config.Library.Name != "" {
		library.Name = config.Library.Name
	}
	if config.Library.Version != "" {
		library.Version = config.Library.Version
	}
	if config.Library.FHIRVersion != "" {
		library.FHIRVersion = config.Library.FHIRVersion
	}
	return library, nil
}
