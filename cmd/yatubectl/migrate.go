package main

import (
	"context"

	"github.com/afivan20/yatube/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(_ context.Context, db *gorm.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				c.log.Info("schema is up to date")
				return nil
			})
		},
	}
}
