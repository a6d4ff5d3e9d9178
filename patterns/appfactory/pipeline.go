package appfactory

import (
	"context"
	"errors"
)

// Pipeline runs the stages in order. Operator may be nil when deployment is
// not wanted.
type Pipeline struct {
	Architect *Architect
	Engineer  *Engineer
	Assembler *Assembler
	Operator  *Operator
}

// Result is what a pipeline run produced.
type Result struct {
	Spec   *AppSpec
	AppDir string
	// Deployment is the uploader output, empty when not deployed.
	Deployment string
}

// Run designs, builds and assembles an app, and deploys it when the
// pipeline has an Operator. The partial Result is returned with any error
// after the design stage.
func (p *Pipeline) Run(ctx context.Context, request string) (*Result, error) {
	if p.Architect == nil || p.Engineer == nil || p.Assembler == nil {
		return nil, errors.New("pipeline: architect, engineer and assembler are required")
	}

	spec, err := p.Architect.Design(ctx, request)
	if err != nil {
		return nil, err
	}
	result := &Result{Spec: spec}

	if _, err := p.Engineer.Build(ctx, spec); err != nil {
		return result, err
	}

	result.AppDir, err = p.Assembler.Assemble(spec)
	if err != nil {
		return result, err
	}

	if p.Operator != nil {
		result.Deployment, err = p.Operator.Deploy(ctx, result.AppDir)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
