package main

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/syssam/oaorm/dialect"
	"github.com/syssam/oaorm/dialect/sql"
	"github.com/syssam/oaorm/dialect/sql/schema"
)

func addDialectFlags(cmd *cobra.Command) {
	cmd.Flags().String("dialect", dialect.Postgres, "SQL dialect: "+strings.Join(dialect.Dialects, ", "))
	cmd.Flags().Bool("if-not-exists", true, "guard CREATE statements with IF NOT EXISTS")
}

func (a *app) tables(ctx context.Context, path string) ([]*schema.Table, error) {
	r, err := a.load(ctx, path)
	if err != nil {
		return nil, err
	}
	return schema.NewTables(r.Graph.Models)
}

func (a *app) ddlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl SPEC",
		Short: "Print the CREATE statements of a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.tables(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := schema.NewRenderer(a.v.GetString("dialect"), schema.WithIfNotExists(a.v.GetBool("if-not-exists")))
			if err != nil {
				return err
			}
			stmts, err := r.Statements(tables)
			if err != nil {
				return err
			}
			for _, stmt := range stmts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt)
			}
			return nil
		},
	}
	addDialectFlags(cmd)
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate SPEC",
		Short: "Create the tables of a spec in a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := a.v.GetString("dsn")
			if dsn == "" {
				return fmt.Errorf("a data source name is required, set --dsn or OAORM_DSN")
			}
			tables, err := a.tables(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			drv, err := sql.Open(a.v.GetString("dialect"), dsn)
			if err != nil {
				return err
			}
			defer drv.Close()
			var d dialect.Driver = drv
			if a.v.GetBool("debug") {
				d = sql.Debug(drv)
			}
			if err := schema.Migrate(cmd.Context(), d, tables, schema.WithIfNotExists(a.v.GetBool("if-not-exists"))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d tables\n", len(tables))
			return nil
		},
	}
	addDialectFlags(cmd)
	cmd.Flags().String("dsn", "", "data source name of the database")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Report the table changes between two versions of a spec",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.tables(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			desired, err := a.tables(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			var opts []schema.ValidateOption
			for flag, opt := range map[string]schema.ValidateOption{
				"allow-drop-table":       schema.AllowDropTable(),
				"allow-drop-column":      schema.AllowDropColumn(),
				"allow-drop-index":       schema.AllowDropIndex(),
				"allow-null-to-not-null": schema.AllowNullToNotNull(),
			} {
				if a.v.GetBool(flag) {
					opts = append(opts, opt)
				}
			}
			result := schema.ValidateDiff(current, desired, opts...)
			fmt.Fprintln(cmd.OutOrStdout(), result)
			if result.HasErrors() {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().Bool("allow-drop-table", false, "report dropped tables as warnings")
	cmd.Flags().Bool("allow-drop-column", false, "report dropped columns as warnings")
	cmd.Flags().Bool("allow-drop-index", false, "report dropped indexes as warnings")
	cmd.Flags().Bool("allow-null-to-not-null", false, "report NULL to NOT NULL changes as warnings")
	return cmd
}
