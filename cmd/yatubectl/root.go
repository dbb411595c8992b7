package main

import (
	"context"
	"fmt"

	"github.com/afivan20/yatube/internal/app"
	"github.com/afivan20/yatube/internal/config"
	"github.com/afivan20/yatube/internal/kernel"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cli carries state shared by every subcommand.
type cli struct {
	verbose bool
	log     *log.Logger
	// openDB is replaced in tests.
	openDB func(ctx context.Context) (*gorm.DB, func() error, error)
}

func newRootCmd() *cobra.Command {
	c := &cli{openDB: openConfiguredDB}
	return c.rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yatubectl",
		Short:         "Yatube administration",
		Long:          "yatubectl migrates the schema, manages groups and users, and seeds development data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.log = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "yatubectl"})
			if c.verbose {
				c.log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(c.migrateCmd())
	root.AddCommand(c.groupCmd())
	root.AddCommand(c.userCmd())
	root.AddCommand(c.seedCmd())
	return root
}

// withDB opens the database, runs fn and always closes the connection.
func (c *cli) withDB(cmd *cobra.Command, fn func(ctx context.Context, db *gorm.DB) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, closeDB, err := c.openDB(ctx)
	if err != nil {
		c.log.Error("failed to open database", "err", err)
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			c.log.Warn("failed to close database", "err", err)
		}
	}()

	if err := fn(ctx, db); err != nil {
		c.log.Error(cmd.CommandPath()+" failed", "err", err)
		return err
	}
	return nil
}

func openConfiguredDB(ctx context.Context) (*gorm.DB, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	k := kernel.New()
	if err := app.OpenDatabase(cfg, k); err != nil {
		_ = k.Cleanup(ctx)
		return nil, nil, err
	}
	return k.DB(), func() error { return k.Cleanup(context.Background()) }, nil
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
