// Package seed fills a database with fake users, groups, posts, comments
// and follows for local development.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPassword is set on every seeded account.
const DefaultPassword = "password123"

// Options control how much data SeedDev creates.
type Options struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
	// Seed makes runs reproducible; 0 picks one from the clock.
	Seed uint64
}

// DefaultOptions is a dataset big enough to page through every feed.
func DefaultOptions() Options {
	return Options{Users: 20, Groups: 5, Posts: 120, Comments: 300, Follows: 60}
}

// Summary reports what a seeding run created.
type Summary struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seeder handles database seeding operations
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	faker    *gofakeit.Faker
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
	}
}

// SeedDev creates the data described by opts. Posts get publication dates
// spread over the last 30 days so feeds have a realistic order.
func (s *Seeder) SeedDev(ctx context.Context, opts Options) (*Summary, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s.faker = gofakeit.New(seed)

	summary := &Summary{}

	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return summary, fmt.Errorf("failed to seed users: %w", err)
	}
	summary.Users = len(users)

	groups, err := s.seedGroups(ctx, opts.Groups)
	if err != nil {
		return summary, fmt.Errorf("failed to seed groups: %w", err)
	}
	summary.Groups = len(groups)

	posts, err := s.seedPosts(ctx, users, groups, opts.Posts)
	if err != nil {
		return summary, fmt.Errorf("failed to seed posts: %w", err)
	}
	summary.Posts = len(posts)

	if summary.Comments, err = s.seedComments(ctx, users, posts, opts.Comments); err != nil {
		return summary, fmt.Errorf("failed to seed comments: %w", err)
	}
	if summary.Follows, err = s.seedFollows(ctx, users, opts.Follows); err != nil {
		return summary, fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", summary.Users),
		zap.Int("groups", summary.Groups),
		zap.Int("posts", summary.Posts),
		zap.Int("comments", summary.Comments),
		zap.Int("follows", summary.Follows),
	)
	return summary, nil
}

// Clean removes every row, children first.
func (s *Seeder) Clean(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"posts_comment", "posts_follow", "posts_post", "posts_group", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clean %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]*models.User, error) {
	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	seen := map[string]bool{}
	for len(users) < count {
		username := strings.ToLower(s.faker.Username())
		if seen[username] {
			continue
		}
		seen[username] = true

		if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
			continue
		}

		user := &models.User{
			Username:     username,
			Email:        s.faker.Email(),
			FirstName:    s.faker.FirstName(),
			LastName:     s.faker.LastName(),
			PasswordHash: hash,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedGroups(ctx context.Context, count int) ([]*models.Group, error) {
	groups := make([]*models.Group, 0, count)
	seen := map[string]bool{}
	for len(groups) < count {
		title := s.faker.HipsterWord() + " " + s.faker.Noun()
		slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
		if seen[slug] {
			continue
		}
		seen[slug] = true

		if _, err := s.groups.GetGroupBySlug(ctx, slug); err == nil {
			continue
		}

		description := s.faker.HipsterSentence()
		group := &models.Group{Title: title, Slug: slug, Description: &description}
		if err := s.groups.CreateGroup(ctx, group); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, groups []*models.Group, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		post := &models.Post{
			Text:     s.faker.HipsterSentence() + "\n" + s.faker.HipsterSentence(),
			AuthorID: users[s.faker.IntN(len(users))].ID,
			PubDate:  now.Add(-time.Duration(s.faker.IntN(30*24*60)) * time.Minute),
		}
		// Roughly a third of posts stay outside any group.
		if len(groups) > 0 && s.faker.IntN(3) > 0 {
			post.GroupID = &groups[s.faker.IntN(len(groups))].ID
		}
		if err := s.posts.CreatePost(ctx, post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, posts []*models.Post, count int) (int, error) {
	if len(users) == 0 || len(posts) == 0 {
		return 0, nil
	}

	for i := 0; i < count; i++ {
		post := posts[s.faker.IntN(len(posts))]
		comment := &models.Comment{
			PostID:   post.ID,
			AuthorID: users[s.faker.IntN(len(users))].ID,
			Text:     s.faker.HipsterSentence(),
			Created:  post.PubDate.Add(time.Duration(1+s.faker.IntN(600)) * time.Minute),
		}
		if err := s.comments.CreateComment(ctx, comment); err != nil {
			return i, err
		}
	}
	return count, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []*models.User, count int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	type pair struct{ user, author uint }
	seen := map[pair]bool{}
	maxPairs := len(users) * (len(users) - 1)
	if count > maxPairs {
		count = maxPairs
	}

	for len(seen) < count {
		user := users[s.faker.IntN(len(users))]
		author := users[s.faker.IntN(len(users))]
		p := pair{user.ID, author.ID}
		if user.ID == author.ID || seen[p] {
			continue
		}
		if err := s.follows.Follow(ctx, user.ID, author.ID); err != nil {
			return len(seen), err
		}
		seen[p] = true
	}
	return len(seen), nil
}
