// Package commands implements the crfctl command tree.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crf-service/cmd/api/infrastructure"
	"crf-service/internal/config"
)

// App holds what the commands share. Tests swap the filesystem, the
// environment and the database opener.
type App struct {
	Fs        afero.Fs
	Out       io.Writer
	Err       io.Writer
	LookupEnv func(key string) (string, bool)
	OpenDB    func(cfg *config.Config, l *zap.Logger) (*gorm.DB, error)
}

// NewApp returns an App bound to the real process environment.
func NewApp() *App {
	return &App{
		Fs:        afero.NewOsFs(),
		Out:       os.Stdout,
		Err:       os.Stderr,
		LookupEnv: os.LookupEnv,
		OpenDB:    infrastructure.NewDatabase,
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crfctl",
		Short:         "Schema and database tooling for the CRF service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)
	cmd.AddCommand(
		newSchemaCmd(app),
		newMigrateCmd(app),
	)
	return cmd
}

// Execute runs crfctl with args and reports failures on stderr.
func Execute(ctx context.Context, args []string) error {
	app := NewApp()
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		cmd.PrintErrln("Error:", err)
		return err
	}
	return nil
}
