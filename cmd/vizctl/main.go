package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Scaffold a viz target definition, registration stub, and manifest entry."`
}

type scaffoldCmd struct {
	Code         string   `required:"" help:"Fully-qualified target code (e.g. acme.viz.backlog)."`
	Name         string   `required:"" help:"Display name for the target."`
	Description  string   `help:"One-line description used in manifests."`
	Category     string   `default:"custom" help:"Target category (operations, sales, etc.)."`
	ManifestPath string   `required:"" type:"path" help:"Path to the target manifest YAML file to update."`
	SchemaPath   string   `type:"path" help:"Optional path to a JSON schema file for the view configuration."`
	Rename       []string `help:"Worksheet rename entries as raw=label pairs (use multiple --rename flags)."`
	Tag          []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer   []string `help:"Maintainers to record in the manifest."`
	StubOut      string   `help:"File path for the generated registration stub (defaults to components/vizembed/targets/<code>_target.go)."`
	Overwrite    bool     `help:"Overwrite existing stub / manifest entry if present."`
	SkipStub     bool     `name:"skip-stub" help:"Skip registration stub generation."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Viz target scaffolding utility for go-vizembed manifests."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("vizctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite {
		for _, target := range doc.Targets {
			if target.Definition.Code == cmd.Code {
				return fmt.Errorf("vizctl: manifest already defines target %s (use --overwrite to replace)", cmd.Code)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}
	renames, err := parseRenames(cmd.Rename)
	if err != nil {
		return err
	}

	entry := vizembed.ManifestTarget{
		Definition: vizembed.VizTargetDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Renames:     renames,
			Schema:      schema,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}

	if cmd.Overwrite {
		replaced := false
		for idx := range doc.Targets {
			if doc.Targets[idx].Definition.Code == cmd.Code {
				doc.Targets[idx] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			doc.Targets = append(doc.Targets, entry)
		}
	} else {
		doc.Targets = append(doc.Targets, entry)
	}

	sort.Slice(doc.Targets, func(i, j int) bool {
		return doc.Targets[i].Definition.Code < doc.Targets[j].Definition.Code
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipStub {
		fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", cmd.Code, manifestPath)
		return nil
	}

	stubPath := cmd.StubOut
	if stubPath == "" {
		stubPath = filepath.Join("components", "vizembed", "targets", fmt.Sprintf("%s_target.go", sanitizeFileName(cmd.Code)))
	}
	if err := writeTargetStub(stubPath, deriveBaseName(cmd.Code), cmd.Code, cmd.Name, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s and generated %s\n", cmd.Code, manifestPath, stubPath)
	return nil
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("vizctl: target code %s must contain at least one '.' segment", cmd.Code)
	}
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("vizctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("vizctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func parseRenames(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	renames := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		raw, label, ok := strings.Cut(pair, "=")
		if !ok || raw == "" || label == "" {
			return nil, fmt.Errorf("vizctl: rename entry %q must be raw=label", pair)
		}
		renames[raw] = label
	}
	return renames, nil
}

func loadOrInitManifest(path string) (*vizembed.TargetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := &vizembed.TargetManifestDocument{
				Version: vizembed.ManifestVersion,
				Targets: []vizembed.ManifestTarget{},
				Source:  path,
			}
			return doc, nil
		}
		return nil, fmt.Errorf("vizctl: stat manifest: %w", err)
	}
	doc, err := vizembed.ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func writeManifest(path string, doc *vizembed.TargetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("vizctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("vizctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("vizctl: write manifest: %w", err)
	}
	return nil
}

func writeTargetStub(path, baseName, code, name string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("vizctl: target stub %s already exists (use --overwrite or --stub-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("vizctl: mkdir stub dir: %w", err)
	}
	content := fmt.Sprintf(`package targets

import (
	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

// Register%s adds the %s target to a registry.
func Register%s(reg *vizembed.Registry) error {
	return reg.RegisterTarget(vizembed.VizTargetDefinition{
		Code: %q,
		Name: %q,
		Renames: map[string]string{
			// raw worksheet name -> display label
		},
	})
}
`, baseName, code, baseName, code, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("vizctl: write target stub: %w", err)
	}
	return nil
}

func deriveBaseName(code string) string {
	parts := strings.Split(code, ".")
	slug := parts[len(parts)-1]
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = code
	}
	return strcase.ToCamel(slug)
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}
