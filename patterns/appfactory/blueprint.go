package appfactory

import (
	"github.com/leofalp/replicator/core/schema"
)

// DefaultThemeColor is the Tailwind color used when the plan names none.
const DefaultThemeColor = "slate"

// FileSpec is a single file to be generated.
type FileSpec struct {
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description" yaml:"description"`
	// Code is empty until the Engineer fills it. It is not part of the
	// manifest.
	Code string `json:"code,omitempty" yaml:"-"`
}

// AppSpec is the blueprint for one application.
type AppSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Pages       []FileSpec `json:"pages" yaml:"pages"`
	Components  []FileSpec `json:"components" yaml:"components"`
	ThemeColor  string     `json:"theme_color,omitempty" yaml:"theme_color"`
}

// Files returns pointers to every planned file, pages first.
func (s *AppSpec) Files() []*FileSpec {
	files := make([]*FileSpec, 0, len(s.Pages)+len(s.Components))
	for i := range s.Pages {
		files = append(files, &s.Pages[i])
	}
	for i := range s.Components {
		files = append(files, &s.Components[i])
	}
	return files
}

// CodeResponse is the reply expected for one file.
type CodeResponse struct {
	Code string `json:"code"`
}

func paths(files []FileSpec) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func fileSpecDescriptor() *schema.Descriptor {
	return schema.Object(
		schema.Required("path", schema.String().Describe("Relative path to the file (e.g., 'app/page.tsx')")),
		schema.Required("description", schema.String().Describe("Description of what this file should contain")),
		schema.Optional("code", schema.String().OrNull().Describe("The actual code content (populated by Engineer)")),
	).WithTitle("FileSpec").Describe("Represents a single file to be generated.")
}

// AppSpecDescriptor describes AppSpec for the planning call.
func AppSpecDescriptor() *schema.Descriptor {
	file := fileSpecDescriptor()
	return schema.Object(
		schema.Required("name", schema.String().Describe("Name of the application (kebab-case)")),
		schema.Required("description", schema.String().Describe("High-level description of the app's purpose")),
		schema.Required("pages", schema.Array(file).Describe("List of page files to generate")),
		schema.Required("components", schema.Array(file).Describe("List of component files to generate")),
		schema.Optional("theme_color", schema.String().OrNull().WithDefault(DefaultThemeColor).Describe("Tailwind theme color")),
	).WithTitle("AppSpec").Describe("The blueprint for the application.")
}

// CodeDescriptor describes CodeResponse for the per-file calls.
func CodeDescriptor() *schema.Descriptor {
	return schema.Object(
		schema.Required("code", schema.String().Describe("The generated code")),
	).WithTitle("CodeResponse")
}
