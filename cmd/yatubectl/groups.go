package main

import (
	"context"
	"fmt"

	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func (c *cli) groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
		Long:  "Groups are created by administrators only; users can file posts under them.",
	}
	cmd.AddCommand(c.groupCreateCmd(), c.groupListCmd(), c.groupDeleteCmd())
	return cmd
}

func (c *cli) groupCreateCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <slug> <title>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				group := &models.Group{Slug: args[0], Title: args[1]}
				if description != "" {
					group.Description = &description
				}
				if err := repository.NewGroupRepository(db).CreateGroup(ctx, group); err != nil {
					return fmt.Errorf("create group %q: %w", args[0], err)
				}
				c.log.Info("group created", "id", group.ID, "slug", group.Slug)
				printf(cmd, "%d\t%s\t%s\n", group.ID, group.Slug, group.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Group description")
	return cmd
}

func (c *cli) groupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				groups, err := repository.NewGroupRepository(db).ListGroups(ctx)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					printf(cmd, "No groups found.\n")
					return nil
				}
				for _, g := range groups {
					printf(cmd, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
				}
				return nil
			})
		},
	}
}

func (c *cli) groupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts stay, without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				if err := repository.NewGroupRepository(db).DeleteGroup(ctx, args[0]); err != nil {
					return fmt.Errorf("delete group %q: %w", args[0], err)
				}
				c.log.Info("group deleted", "slug", args[0])
				return nil
			})
		},
	}
}
