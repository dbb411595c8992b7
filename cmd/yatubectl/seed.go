package main

import (
	"context"

	"github.com/afivan20/yatube/internal/seed"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func (c *cli) seedCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	var clean bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake development data",
		Long: "Creates users, groups, posts, comments and follows. Every seeded account\n" +
			"uses the password " + seed.DefaultPassword + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd, func(ctx context.Context, db *gorm.DB) error {
				seeder := seed.NewSeeder(db)
				if clean {
					c.log.Warn("removing existing data")
					if err := seeder.Clean(ctx); err != nil {
						return err
					}
				}
				summary, err := seeder.SeedDev(ctx, opts)
				if err != nil {
					return err
				}
				c.log.Info("seeding complete",
					"users", summary.Users,
					"groups", summary.Groups,
					"posts", summary.Posts,
					"comments", summary.Comments,
					"follows", summary.Follows,
				)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&clean, "clean", false, "Delete all data before seeding")
	f.IntVar(&opts.Users, "users", opts.Users, "Number of users")
	f.IntVar(&opts.Groups, "groups", opts.Groups, "Number of groups")
	f.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts")
	f.IntVar(&opts.Comments, "comments", opts.Comments, "Number of comments")
	f.IntVar(&opts.Follows, "follows", opts.Follows, "Number of follow pairs")
	f.Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}
