package appfactory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/replicator/providers/observability"
)

// ManifestFile is written into every assembled app.
const ManifestFile = "replicator.yaml"

// Assembler writes a planned and built app over a copy of a template.
type Assembler struct {
	templateDir string
	outputDir   string
	observer    observability.Provider
}

// NewAssembler returns an Assembler writing apps under outputDir. A nil
// observer disables logging.
func NewAssembler(templateDir, outputDir string, observer observability.Provider) *Assembler {
	if observer == nil {
		observer = observability.Nop()
	}
	return &Assembler{templateDir: templateDir, outputDir: outputDir, observer: observer}
}

// Assemble creates <output>/<name>, replacing any previous directory, copies
// the template into it and writes every file that has code. It returns the
// app directory.
func (a *Assembler) Assemble(spec *AppSpec) (string, error) {
	ctx := context.Background()

	if err := checkSpec(spec); err != nil {
		return "", fmt.Errorf("assembler: %w", err)
	}
	appDir := filepath.Join(a.outputDir, spec.Name)
	a.observer.Info(ctx, "assembler: assembling app",
		observability.String(observability.AttrAppName, spec.Name),
		observability.String(observability.AttrAppDir, appDir),
	)

	info, err := os.Stat(a.templateDir)
	if err != nil {
		return "", fmt.Errorf("assembler: template: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("assembler: template %s is not a directory", a.templateDir)
	}

	if err := os.RemoveAll(appDir); err != nil {
		return "", fmt.Errorf("assembler: removing %s: %w", appDir, err)
	}
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("assembler: creating output directory: %w", err)
	}
	a.observer.Debug(ctx, "assembler: copying template",
		observability.String("template", a.templateDir),
		observability.String(observability.AttrAppDir, appDir),
	)
	if err := os.CopyFS(appDir, os.DirFS(a.templateDir)); err != nil {
		return "", fmt.Errorf("assembler: copying template: %w", err)
	}

	for _, file := range spec.Files() {
		if file.Code == "" {
			a.observer.Warn(ctx, "assembler: no code generated",
				observability.String(observability.AttrAppFilePath, file.Path),
			)
			continue
		}
		if err := writeFile(appDir, file); err != nil {
			return "", fmt.Errorf("assembler: %w", err)
		}
		a.observer.Debug(ctx, "assembler: wrote file",
			observability.String(observability.AttrAppFilePath, file.Path),
		)
	}

	if err := writeManifest(appDir, spec); err != nil {
		return "", fmt.Errorf("assembler: %w", err)
	}

	a.observer.Info(ctx, "assembler: app ready", observability.String(observability.AttrAppDir, appDir))
	return appDir, nil
}

func writeFile(appDir string, file *FileSpec) error {
	rel := filepath.FromSlash(file.Path)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: file path %q escapes the app directory", ErrInvalidSpec, file.Path)
	}
	target := filepath.Join(appDir, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", file.Path, err)
	}
	if err := os.WriteFile(target, []byte(file.Code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file.Path, err)
	}
	return nil
}

func writeManifest(appDir string, spec *AppSpec) error {
	data, err := MarshalYAML(spec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(appDir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// MarshalYAML renders spec without code, as stored in the manifest.
func MarshalYAML(spec *AppSpec) ([]byte, error) {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// ReadManifest loads the spec stored in an assembled app directory.
func ReadManifest(appDir string) (*AppSpec, error) {
	data, err := os.ReadFile(filepath.Join(appDir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var spec AppSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &spec, nil
}
