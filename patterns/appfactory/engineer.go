package appfactory

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/leofalp/replicator/core/client"
	"github.com/leofalp/replicator/providers/observability"
)

const engineerPrompt = `You are an expert React/Next.js Developer.
Your task is to write the code for a specific file based on the App Specification.

Stack: Next.js 14 (App Router), Tailwind CSS, Lucide React.

Rules:
1. Write clean, modern, functional code.
2. Use 'export default function' for components.
3. Ensure all imports are correct (use @/components/ui/... for shadcn if available, or standard imports).
4. For this MVP, assume standard HTML/Tailwind elements if no UI library is pre-installed beyond Tailwind.
5. Return ONLY the code inside the "code" field of the JSON object, without markdown fencing.`

// EngineerOption configures an Engineer.
type EngineerOption func(*Engineer)

// WithConcurrency sets how many files are generated at once. Values below 1
// mean one at a time.
func WithConcurrency(n int) EngineerOption {
	return func(e *Engineer) {
		e.concurrency = n
	}
}

// WithRateLimit caps backend requests per second. Zero or less disables the
// limit.
func WithRateLimit(rps float64) EngineerOption {
	return func(e *Engineer) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			e.limiter = nil
		}
	}
}

// WithSkipFailed keeps going when a file cannot be generated. The file is
// left without code and a warning is logged.
func WithSkipFailed() EngineerOption {
	return func(e *Engineer) {
		e.skipFailed = true
	}
}

// Engineer writes the code of every planned file.
type Engineer struct {
	generator   *client.StructuredClient[CodeResponse]
	observer    observability.Provider
	concurrency int
	limiter     *rate.Limiter
	skipFailed  bool
}

// NewEngineer wraps base with the CodeResponse descriptor.
func NewEngineer(base *client.Client, opts ...EngineerOption) (*Engineer, error) {
	generator, err := client.FromBaseClient[CodeResponse](base, CodeDescriptor())
	if err != nil {
		return nil, fmt.Errorf("engineer: %w", err)
	}
	e := &Engineer{generator: generator, observer: base.Observer(), concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e, nil
}

// Build fills Code for every page, then every component, in place and
// returns spec. The first failure cancels the remaining files unless
// WithSkipFailed was used.
func (e *Engineer) Build(ctx context.Context, spec *AppSpec) (*AppSpec, error) {
	files := spec.Files()

	ctx, span := e.observer.StartSpan(ctx, observability.SpanEngineerBuild,
		observability.String(observability.AttrAppName, spec.Name),
		observability.Int(observability.AttrAppFilesCount, len(files)),
	)
	defer span.End()

	e.observer.Info(ctx, "engineer: building app",
		observability.String(observability.AttrAppName, spec.Name),
		observability.Int(observability.AttrAppFilesCount, len(files)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, file := range files {
		g.Go(func() error {
			code, err := e.generateFile(gctx, spec, file)
			if err != nil {
				if e.skipFailed && gctx.Err() == nil {
					e.observer.Warn(gctx, "engineer: skipping file",
						observability.String(observability.AttrAppFilePath, file.Path),
						observability.Error(err),
					)
					return nil
				}
				return fmt.Errorf("engineer: generating %s: %w", file.Path, err)
			}
			file.Code = code
			e.observer.Counter(observability.MetricFilesGenerated).Add(gctx, 1,
				observability.String(observability.AttrAppName, spec.Name),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "build failed")
		return nil, err
	}
	span.SetStatus(observability.StatusOK, "")
	return spec, nil
}

func (e *Engineer) generateFile(ctx context.Context, spec *AppSpec, file *FileSpec) (string, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	e.observer.Info(ctx, "engineer: generating file",
		observability.String(observability.AttrAppFilePath, file.Path),
	)

	response, err := e.generator.Generate(ctx, engineerRequest(spec, file))
	if err != nil {
		return "", err
	}
	return response.Code, nil
}

func engineerRequest(spec *AppSpec, file *FileSpec) string {
	var b strings.Builder
	b.WriteString(engineerPrompt)
	fmt.Fprintf(&b, "\n\nApp Name: %s\nApp Description: %s\n", spec.Name, spec.Description)
	fmt.Fprintf(&b, "\nFile to generate: %s\nFile Description: %s\n", file.Path, file.Description)
	b.WriteString("\nContext (Other files being generated):\n")
	fmt.Fprintf(&b, "Pages: %s\n", strings.Join(paths(spec.Pages), ", "))
	fmt.Fprintf(&b, "Components: %s", strings.Join(paths(spec.Components), ", "))
	return b.String()
}
