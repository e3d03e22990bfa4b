package vizembed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// TargetManifestDocument models a YAML/JSON manifest describing viz targets
// and their rename tables.
type TargetManifestDocument struct {
	Version  string           `json:"version" yaml:"version"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Package  string           `json:"package,omitempty" yaml:"package,omitempty"`
	Homepage string           `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Targets  []ManifestTarget `json:"targets" yaml:"targets"`
	Source   string           `json:"-" yaml:"-"`
}

// ManifestTarget describes a single target entry within a manifest.
type ManifestTarget struct {
	Definition  VizTargetDefinition `json:"definition" yaml:"definition"`
	Maintainers []string            `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers it against the
// registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*TargetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers target definitions from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *TargetManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("vizembed: manifest document is nil")
	}
	for _, target := range doc.Targets {
		if err := r.RegisterTarget(target.Definition); err != nil {
			return fmt.Errorf("vizembed: register target %s from %s: %w", target.Definition.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*TargetManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("vizembed: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("vizembed: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*TargetManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc TargetManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("vizembed: manifest is empty")
		}
		return nil, fmt.Errorf("vizembed: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *TargetManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("vizembed: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Targets))
	for idx, target := range doc.Targets {
		if target.Definition.Code == "" {
			return fmt.Errorf("vizembed: manifest target at index %d is missing definition.code", idx)
		}
		if target.Definition.Name == "" {
			return fmt.Errorf("vizembed: manifest target %s missing definition.name", target.Definition.Code)
		}
		if _, exists := seen[target.Definition.Code]; exists {
			return fmt.Errorf("vizembed: manifest duplicates target code %s", target.Definition.Code)
		}
		seen[target.Definition.Code] = struct{}{}
	}
	return nil
}

func (doc *TargetManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
