package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leofalp/replicator/core/client"
	"github.com/leofalp/replicator/core/client/middleware"
	"github.com/leofalp/replicator/patterns/appfactory"
	"github.com/leofalp/replicator/providers/observability"
	"github.com/leofalp/replicator/providers/observability/slogobs"
)

// app holds what every command resolves before running.
type app struct {
	cfgFile  string
	cfg      *config
	observer *slogobs.Observer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "replicator [flags] \"<prompt>\"",
		Short: "AI web app factory",
		Long: `Replicator turns a description of an app into a generated Next.js project.

The pipeline:
  - Architect: plans pages and components with one LLM call
  - Engineer: writes the code of every planned file
  - Assembler: copies the template and writes the files over it
  - Operator (--deploy): builds a static export and uploads it with pinme`,
		Version:      gitRelease,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./replicator.yaml if present)")
	addConfigFlags(root.PersistentFlags())

	root.AddCommand(newPlanCmd(a), newVersionCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	if err := loadDotEnv(); err != nil {
		return err
	}
	v, err := newViper(cmd.Flags(), a.cfgFile)
	if err != nil {
		return err
	}
	if a.cfg, err = resolveConfig(v); err != nil {
		return err
	}
	a.observer = newObserver(a.cfg, cmd.ErrOrStderr())
	return nil
}

// newClient builds the engine client with the configured middleware chain.
func (a *app) newClient() (*client.Client, error) {
	middlewares := []client.Middleware{middleware.NewTimeoutMiddleware(a.cfg.Timeout)}
	if a.cfg.LogLevel <= slog.LevelDebug {
		level := middleware.LogLevelStandard
		if a.cfg.LogLevel <= slogobs.LevelTrace {
			level = middleware.LogLevelVerbose
		}
		middlewares = append(middlewares, middleware.NewLoggingMiddleware(a.observer.Logger(), level))
	}

	opts := []func(*client.ClientOptions){
		client.WithObserver(a.observer),
		client.WithMiddleware(middlewares...),
	}
	if a.cfg.Repair {
		opts = append(opts, client.WithRepair())
	}
	return client.New(a.cfg.Provider, opts...)
}

func (a *app) runBuild(ctx context.Context, out io.Writer, request string) error {
	a.observer.Info(ctx, "replicator starting",
		observability.String("prompt", request),
		observability.String(observability.AttrLLMProvider, a.cfg.Provider.Kind.String()),
	)

	base, err := a.newClient()
	if err != nil {
		return a.fail(ctx, err)
	}
	architect, err := appfactory.NewArchitect(base)
	if err != nil {
		return a.fail(ctx, err)
	}
	engineerOpts := []appfactory.EngineerOption{
		appfactory.WithConcurrency(a.cfg.Concurrency),
		appfactory.WithRateLimit(a.cfg.RPS),
	}
	if a.cfg.SkipFailed {
		engineerOpts = append(engineerOpts, appfactory.WithSkipFailed())
	}
	engineer, err := appfactory.NewEngineer(base, engineerOpts...)
	if err != nil {
		return a.fail(ctx, err)
	}

	pipeline := &appfactory.Pipeline{
		Architect: architect,
		Engineer:  engineer,
		Assembler: appfactory.NewAssembler(a.cfg.Template, a.cfg.Output, a.observer),
	}
	if a.cfg.Deploy {
		pipeline.Operator = appfactory.NewOperator(nil, a.observer)
	}

	result, err := pipeline.Run(ctx, request)
	if err != nil {
		return a.fail(ctx, err)
	}

	spec := result.Spec
	fmt.Fprintf(out, "Spec generated: %s (%d pages, %d components)\n", spec.Name, len(spec.Pages), len(spec.Components))
	fmt.Fprintf(out, "Done! App created at: %s\n", result.AppDir)
	if a.cfg.Deploy {
		fmt.Fprintf(out, "Deployed to: %s\n", result.Deployment)
		return nil
	}
	fmt.Fprintf(out, "  Run: cd %s && npm install && npm run dev\n", result.AppDir)
	fmt.Fprintf(out, "  To deploy: pinme upload %s/out\n", result.AppDir)
	return nil
}

func (a *app) fail(ctx context.Context, err error) error {
	a.observer.Error(ctx, "replicator failed", observability.Error(err))
	return err
}
