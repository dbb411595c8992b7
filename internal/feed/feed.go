// Package feed assembles the paginated post listings: the global feed,
// group feeds, author profiles and a user's follow feed.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/afivan20/yatube/internal/metrics"
	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/paginator"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/afivan20/yatube/internal/telemetry"
	"github.com/graph-gophers/dataloader"
)

// Page is one page of posts, newest first.
type Page = paginator.Page[*models.Post]

// Feed is a page of posts with their comment counts.
type Feed struct {
	Page          Page
	CommentCounts map[uint]int64
}

// CommentCount is the number of comments on postID, 0 when unknown.
func (f *Feed) CommentCount(postID uint) int64 {
	return f.CommentCounts[postID]
}

// GroupFeed is the feed for a single group.
type GroupFeed struct {
	*Feed
	Group *models.Group
}

// ProfileFeed is an author's posts plus the viewer's relation to them.
type ProfileFeed struct {
	*Feed
	Author         *models.User
	Following      bool
	IsOwnProfile   bool
	FollowerCount  int64
	FollowingCount int64
}

// Service builds feeds from the repositories.
type Service struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
	pageSize int
}

type Deps struct {
	Posts    repository.PostRepository
	Groups   repository.GroupRepository
	Users    repository.UserRepository
	Follows  repository.FollowRepository
	Comments repository.CommentRepository
	PageSize int
}

func NewService(deps Deps) *Service {
	size := deps.PageSize
	if size < 1 {
		size = paginator.DefaultPageSize
	}
	return &Service{
		posts:    deps.Posts,
		groups:   deps.Groups,
		users:    deps.Users,
		follows:  deps.Follows,
		comments: deps.Comments,
		pageSize: size,
	}
}

// Global lists every post.
func (s *Service) Global(ctx context.Context, page int) (*Feed, error) {
	return s.list(ctx, "global", repository.PostFilter{}, page)
}

// Group lists the posts filed under slug.
func (s *Service) Group(ctx context.Context, slug string, page int) (*GroupFeed, error) {
	group, err := s.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	f, err := s.list(ctx, "group", repository.PostFilter{GroupSlug: slug}, page)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Feed: f, Group: group}, nil
}

// Profile lists username's posts. viewer may be nil for anonymous requests.
func (s *Service) Profile(ctx context.Context, username string, viewer *models.User, page int) (*ProfileFeed, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	f, err := s.list(ctx, "profile", repository.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return nil, err
	}

	profile := &ProfileFeed{Feed: f, Author: author}
	if viewer != nil {
		profile.IsOwnProfile = viewer.ID == author.ID
		if !profile.IsOwnProfile {
			if profile.Following, err = s.follows.IsFollowing(ctx, viewer.ID, author.ID); err != nil {
				return nil, err
			}
		}
	}
	if profile.FollowerCount, err = s.follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.follows.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

// Following lists posts by the authors viewer follows.
func (s *Service) Following(ctx context.Context, viewer *models.User, page int) (*Feed, error) {
	if viewer == nil {
		return nil, fmt.Errorf("follow feed needs a user: %w", repository.ErrInvalidInput)
	}
	return s.list(ctx, "follow", repository.PostFilter{FollowerID: viewer.ID}, page)
}

func (s *Service) list(ctx context.Context, name string, filter repository.PostFilter, number int) (_ *Feed, err error) {
	start := time.Now()
	ctx, span := telemetry.TraceFeed(ctx, name, number)
	defer func() {
		telemetry.EndSpan(span, err)
		metrics.RecordFeedGeneration(name, time.Since(start))
	}()

	count, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	w := paginator.NewWindow(int(count), s.pageSize, number)

	var posts []*models.Post
	if w.Limit > 0 {
		posts, err = s.posts.ListPosts(ctx, filter, w.Limit, w.Offset)
		if err != nil {
			return nil, err
		}
	}

	counts, err := s.commentCounts(ctx, posts)
	if err != nil {
		return nil, err
	}

	return &Feed{
		Page:          paginator.FromWindow(w, posts),
		CommentCounts: counts,
	}, nil
}

func (s *Service) commentCounts(ctx context.Context, posts []*models.Post) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(posts))
	if len(posts) == 0 {
		return counts, nil
	}

	loaders := LoadersFrom(ctx)
	if loaders == nil {
		loaders = NewLoaders(s.comments)
	}

	keys := make([]string, len(posts))
	for i, post := range posts {
		keys[i] = postKey(post.ID)
	}

	values, errs := loaders.CommentCountByPostID.LoadMany(ctx, dataloader.NewKeysFromStrings(keys))()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for i, post := range posts {
		if n, ok := values[i].(int64); ok {
			counts[post.ID] = n
		}
	}
	return counts, nil
}
