package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/leofalp/replicator/patterns/appfactory"
)

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan \"<prompt>\"",
		Short: "Design an app and print its spec as YAML without generating code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlan(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runPlan(ctx context.Context, out io.Writer, request string) error {
	base, err := a.newClient()
	if err != nil {
		return a.fail(ctx, err)
	}
	architect, err := appfactory.NewArchitect(base)
	if err != nil {
		return a.fail(ctx, err)
	}

	spec, err := architect.Design(ctx, request)
	if err != nil {
		return a.fail(ctx, err)
	}

	data, err := appfactory.MarshalYAML(spec)
	if err != nil {
		return a.fail(ctx, err)
	}
	_, err = out.Write(data)
	return err
}
