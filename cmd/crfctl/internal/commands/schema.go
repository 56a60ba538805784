package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"crf-service/internal/adapter/db/mysql"
	"crf-service/internal/schema"
)

// listingDepth bounds the diagnostic tree printed when no schema is found.
const listingDepth = 3

type schemaFlags struct {
	path     string
	root     string
	maxDepth int
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "schema", "", "path to schema.prisma; searched for when empty")
	cmd.Flags().StringVar(&f.root, "root", ".", "directory to search from")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", schema.DefaultMaxDepth, "directory levels to search")
}

func newSchemaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Locate, validate and inspect schema.prisma",
	}
	cmd.AddCommand(
		newSchemaLocateCmd(app),
		newSchemaCheckCmd(app),
		newSchemaInspectCmd(app),
	)
	return cmd
}

func newSchemaLocateCmd(app *App) *cobra.Command {
	var flags schemaFlags
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the path of the schema file that would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.resolveSchema(flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSchemaCheckCmd(app *App) *cobra.Command {
	var (
		flags         schemaFlags
		generator     string
		requireTables bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the datasource, generator and models of the schema file",
		Long: "Validate the datasource, generator and models of the schema file.\n" +
			"DATABASE_URL is parsed but never connected to, so a placeholder is enough.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.resolveSchema(flags)
			if err != nil {
				return err
			}
			s, err := schema.ParseFile(app.Fs, path)
			if err != nil {
				return err
			}
			opts := schema.CheckOptions{Generator: generator, LookupEnv: app.LookupEnv}
			if requireTables {
				opts.Tables = mysql.Tables()
			}
			if err := schema.Check(s, opts); err != nil {
				return fmt.Errorf("%s is invalid:\n%w", path, err)
			}
			fmt.Fprintf(app.Out, "%s: ok (%d models)\n", path, len(s.Models))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&generator, "generator", "", "generator block that must be defined, e.g. client_py")
	cmd.Flags().BoolVar(&requireTables, "require-tables", false, "fail unless every table the service queries has a model")
	return cmd
}

func newSchemaInspectCmd(app *App) *cobra.Command {
	var flags schemaFlags
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the models and fields of the schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.resolveSchema(flags)
			if err != nil {
				return err
			}
			s, err := schema.ParseFile(app.Fs, path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			for _, m := range s.Models {
				fmt.Fprintf(w, "model %s\n", m.Name)
				for _, f := range m.Fields {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", f.Name, f.Type, f.Attributes)
				}
			}
			for _, g := range s.Generators {
				fmt.Fprintf(w, "generator %s\t%s\n", g.Name, g.Properties["provider"])
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

// resolveSchema returns the explicit --schema path or searches for one. When
// nothing is found the directory tree is printed to stderr.
func (a *App) resolveSchema(f schemaFlags) (string, error) {
	if f.path != "" {
		info, err := a.Fs.Stat(f.path)
		if err != nil {
			return "", fmt.Errorf("schema file: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("schema file %s is a directory", f.path)
		}
		return f.path, nil
	}

	path, err := schema.Locate(a.Fs, f.root, f.maxDepth)
	if errors.Is(err, schema.ErrNotFound) {
		fmt.Fprintf(a.Err, "no %s found, directory contents:\n", schema.FileName)
		fmt.Fprint(a.Err, schema.Listing(a.Fs, f.root, listingDepth))
	}
	return path, err
}
