package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/oaorm/compiler/build"
	"github.com/syssam/oaorm/compiler/load"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	cmd := &cobra.Command{
		Use:           "oaorm",
		Short:         "Resolve OpenAPI schemas into ORM models",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default ./oaorm.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("validate", true, "validate relationships")
	flags.Bool("validate-openapi", false, "validate documents as OpenAPI 3")

	cmd.AddCommand(
		a.buildCmd(),
		a.artifactsCmd(),
		a.validateCmd(),
		a.ddlCmd(),
		a.migrateCmd(),
		a.diffCmd(),
		a.watchCmd(),
	)
	return cmd
}

// init reads the configuration and installs the global logger. Values come
// from flags, then OAORM_ environment variables, then the config file.
func (a *app) init(cmd *cobra.Command) error {
	v := a.v
	v.SetEnvPrefix("OAORM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	file := v.GetString("config")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("oaorm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if v.GetBool("debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.log = logger
	zap.ReplaceGlobals(logger)
	return nil
}

// buildOptions returns the build options set by flags and configuration.
func (a *app) buildOptions() []build.Option {
	opts := []build.Option{
		build.WithOpenAPIValidation(a.v.GetBool("validate-openapi")),
		build.WithValidation(a.v.GetBool("validate")),
	}
	if a.v.IsSet("format") {
		opts = append(opts, build.WithFormat(a.v.GetString("format")))
	}
	if a.v.IsSet("package") {
		opts = append(opts, build.WithPackage(a.v.GetString("package")))
	}
	if n := a.v.GetInt("workers"); n > 0 {
		opts = append(opts, build.WithWorkers(n))
	}
	return opts
}

// load builds the document at path without writing anything.
func (a *app) load(ctx context.Context, path string) (*build.Result, error) {
	spec, err := load.File(ctx, path, load.WithOpenAPIValidation(a.v.GetBool("validate-openapi")))
	if err != nil {
		return nil, err
	}
	return build.Build(spec, a.buildOptions()...)
}
