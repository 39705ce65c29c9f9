package core

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest defines the structure of a module manifest (inspired by subgraph manifests)
type Manifest struct {
	Name        string                 `yaml:"name"`
	Version     string                 `yaml:"version"`
	Description string                 `yaml:"description,omitempty"`
	Repository  string                 `yaml:"repository,omitempty"`
	DataSources []DataSource           `yaml:"dataSources"`
	Context     map[string]interface{} `yaml:"context,omitempty"` // Module-specific context
}

// DataSource defines a contract or set of contracts to watch
type DataSource struct {
	Kind    string           `yaml:"kind"`    // "ethereum/contract"
	Name    string           `yaml:"name"`    // Friendly name
	Network string           `yaml:"network"` // "moonriver"
	Source  DataSourceSource `yaml:"source"`
}

// DataSourceSource defines the contract source information
type DataSourceSource struct {
	Address    *string `yaml:"address,omitempty"`    // Contract address (optional for templates)
	StartBlock *uint64 `yaml:"startBlock,omitempty"` // Block to start indexing from
}

// ValidateManifest validates a manifest structure
func (m *Manifest) ValidateManifest() error {
	if m.Name == "" {
		return ErrInvalidManifest{Field: "name", Reason: "name is required"}
	}

	if m.Version == "" {
		return ErrInvalidManifest{Field: "version", Reason: "version is required"}
	}

	if len(m.DataSources) == 0 {
		return ErrInvalidManifest{Field: "dataSources", Reason: "at least one data source is required"}
	}

	for i, ds := range m.DataSources {
		if ds.Kind == "" {
			return ErrInvalidManifest{Field: fmt.Sprintf("dataSources[%d].kind", i), Reason: "kind is required"}
		}
		if ds.Name == "" {
			return ErrInvalidManifest{Field: fmt.Sprintf("dataSources[%d].name", i), Reason: "name is required"}
		}
	}

	return nil
}

// DecodeContext unmarshals the free-form manifest context into a typed
// module config via a YAML round trip.
func (m *Manifest) DecodeContext(out interface{}) error {
	if m.Context == nil {
		return nil
	}

	raw, err := yaml.Marshal(m.Context)
	if err != nil {
		return fmt.Errorf("failed to re-encode manifest context: %w", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode manifest context: %w", err)
	}
	return nil
}

// ErrInvalidManifest is returned when a manifest is invalid
type ErrInvalidManifest struct {
	Field  string
	Reason string
}

func (e ErrInvalidManifest) Error() string {
	return "invalid manifest field " + e.Field + ": " + e.Reason
}
