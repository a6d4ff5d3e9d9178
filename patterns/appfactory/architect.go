package appfactory

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/leofalp/replicator/core/client"
	"github.com/leofalp/replicator/providers/observability"
)

const architectPrompt = `You are an expert Software Architect for a Web App Factory.
Your goal is to design a simple, single-purpose web application based on the user's request.

The app will be built using Next.js and Tailwind CSS.
You need to define the file structure, specifically the pages and components.

Rules:
1. Keep it simple. MVP only.
2. Use standard Next.js App Router structure.
3. Use 'lucide-react' for icons.
4. Design a clean, modern UI.
5. Return a JSON object matching the AppSpec schema.`

// ErrInvalidSpec is returned when a plan cannot be used as a project layout.
var ErrInvalidSpec = errors.New("invalid app spec")

// Architect plans an application.
type Architect struct {
	generator *client.StructuredClient[AppSpec]
	observer  observability.Provider
}

// NewArchitect wraps base with the AppSpec descriptor.
func NewArchitect(base *client.Client) (*Architect, error) {
	generator, err := client.FromBaseClient[AppSpec](base, AppSpecDescriptor())
	if err != nil {
		return nil, fmt.Errorf("architect: %w", err)
	}
	return &Architect{generator: generator, observer: base.Observer()}, nil
}

// Design asks the backend for an AppSpec. Files in the returned plan have no
// code yet.
func (a *Architect) Design(ctx context.Context, request string) (*AppSpec, error) {
	ctx, span := a.observer.StartSpan(ctx, observability.SpanArchitectDesign)
	defer span.End()

	a.observer.Info(ctx, "architect: designing app", observability.String("request", request))

	spec, err := a.generator.Generate(ctx, architectRequest(request))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "design failed")
		return nil, fmt.Errorf("architect: %w", err)
	}

	normalize(spec)
	if err := checkSpec(spec); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "invalid plan")
		return nil, fmt.Errorf("architect: %w", err)
	}

	span.SetAttributes(
		observability.String(observability.AttrAppName, spec.Name),
		observability.Int(observability.AttrAppFilesCount, len(spec.Pages)+len(spec.Components)),
	)
	span.SetStatus(observability.StatusOK, "")
	a.observer.Info(ctx, "architect: spec generated",
		observability.String(observability.AttrAppName, spec.Name),
		observability.Int("pages", len(spec.Pages)),
		observability.Int("components", len(spec.Components)),
	)
	return spec, nil
}

func architectRequest(request string) string {
	return fmt.Sprintf("%s\n\nUser Request: %q", architectPrompt, strings.TrimSpace(request))
}

// normalize fills defaults and drops code the backend may have invented.
func normalize(spec *AppSpec) {
	spec.Name = strings.TrimSpace(spec.Name)
	if strings.TrimSpace(spec.ThemeColor) == "" {
		spec.ThemeColor = DefaultThemeColor
	}
	for _, f := range spec.Files() {
		f.Path = strings.TrimSpace(f.Path)
		f.Code = ""
	}
}

// checkSpec rejects names and paths that would leave the app directory.
func checkSpec(spec *AppSpec) error {
	if spec.Name == "" || spec.Name == "." || spec.Name == ".." || strings.ContainsAny(spec.Name, `/\`) {
		return fmt.Errorf("%w: app name %q is not a single path element", ErrInvalidSpec, spec.Name)
	}
	for _, f := range spec.Files() {
		if !isLocalPath(f.Path) {
			return fmt.Errorf("%w: file path %q escapes the app directory", ErrInvalidSpec, f.Path)
		}
	}
	return nil
}

// isLocalPath reports whether p is a relative slash-separated path that
// stays inside its root.
func isLocalPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return false
	}
	clean := path.Clean(p)
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}
