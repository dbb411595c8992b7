package main

import (
	"context"
	"fmt"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(c.userCreateCmd(), c.userListCmd(), c.userDeleteCmd())
	return cmd
}

func (c *cli) userCreateCmd() *cobra.Command {
	var req auth.SignupRequest
	cmd := &cobra.Command{
		Use:   "create <username> <password>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Username, req.Password = args[0], args[1]
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				// The signing key is unused; only Register is called.
				svc := auth.NewService(repository.NewUserRepository(db), []byte("yatubectl"))
				user, err := svc.Register(ctx, req)
				if err != nil {
					return fmt.Errorf("create user %q: %w", req.Username, err)
				}
				c.log.Info("user created", "id", user.ID, "username", user.Username)
				printf(cmd, "%d\t%s\n", user.ID, user.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	return cmd
}

func (c *cli) userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				users, err := repository.NewUserRepository(db).ListUsers(ctx)
				if err != nil {
					return err
				}
				for _, u := range users {
					printf(cmd, "%d\t%s\t%s\n", u.ID, u.Username, u.FullName())
				}
				return nil
			})
		},
	}
}

func (c *cli) userDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user with their posts, comments and follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				users := repository.NewUserRepository(db)
				user, err := users.GetUserByUsername(ctx, args[0])
				if err != nil {
					return fmt.Errorf("find user %q: %w", args[0], err)
				}
				if err := users.DeleteUser(ctx, user.ID); err != nil {
					return err
				}
				c.log.Info("user deleted", "username", user.Username)
				return nil
			})
		},
	}
}
