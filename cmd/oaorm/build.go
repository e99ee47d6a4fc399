package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/oaorm/compiler/build"
	"github.com/syssam/oaorm/compiler/load"
	"github.com/syssam/oaorm/schema/relationship"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build SPEC [SPEC...]",
		Short: "Build specs into artifacts and Go models",
		Long: `Build processes every document in parallel and writes, for a document
named NAME:

  OUT/NAME/spec.json            the canonical processed schemas
  OUT/NAME/artifacts.FORMAT     the extracted models
  OUT/NAME/PACKAGE/*.go         the generated Go models`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := build.Execute(cmd.Context(), args, a.v.GetString("out"), a.buildOptions()...)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d models\n", r.Name, r.Version, len(r.Graph.Models))
			}
			return nil
		},
	}
	addBuildFlags(cmd)
	cmd.Flags().String("out", "oaorm", "output directory")
	cmd.Flags().Int("workers", 0, "documents built in parallel (default GOMAXPROCS)")
	return cmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", string(build.FormatJSON), "artifacts format: json, yaml or msgpack")
	cmd.Flags().String("package", "models", "name of the generated Go package")
}

func (a *app) artifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts SPEC",
		Short: "Print the artifacts of a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			format := build.FormatJSON
			if a.v.IsSet("format") {
				format = build.Format(a.v.GetString("format"))
			}
			data, err := build.Encode(r.Artifacts(), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	addBuildFlags(cmd)
	return cmd
}

var errInvalid = errors.New("validation failed")

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate SPEC",
		Short: "Validate the relationships of a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := load.File(cmd.Context(), args[0], load.WithOpenAPIValidation(a.v.GetBool("validate-openapi")))
			if err != nil {
				return err
			}
			result, err := relationship.Validate(spec.Schemas)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			if result.HasErrors() {
				return errInvalid
			}
			r, err := build.Build(spec, a.buildOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d models, %d tables\n", len(r.Graph.Models), len(r.Graph.Tables()))
			return nil
		},
	}
}
