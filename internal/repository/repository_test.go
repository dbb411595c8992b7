package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/afivan20/yatube/internal/database"
	"github.com/afivan20/yatube/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	users    UserRepository
	groups   GroupRepository
	posts    PostRepository
	comments CommentRepository
	follows  FollowRepository

	author *models.User
	reader *models.User
	group  *models.Group
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	db, err := database.OpenInMemory()
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()

	s.users = NewUserRepository(db)
	s.groups = NewGroupRepository(db)
	s.posts = NewPostRepository(db)
	s.comments = NewCommentRepository(db)
	s.follows = NewFollowRepository(db)

	s.author = &models.User{Username: "V.Pupkin"}
	s.Require().NoError(s.users.CreateUser(s.ctx, s.author))
	s.reader = &models.User{Username: "reader"}
	s.Require().NoError(s.users.CreateUser(s.ctx, s.reader))

	s.group = &models.Group{Title: "Тестовая группа", Slug: "test-slug"}
	s.Require().NoError(s.groups.CreateGroup(s.ctx, s.group))
}

func (s *RepositoryTestSuite) TearDownTest() {
	_ = database.Close(s.db)
}

func (s *RepositoryTestSuite) createPost(author *models.User, group *models.Group, text string, pubDate time.Time) *models.Post {
	post := &models.Post{Text: text, AuthorID: author.ID, PubDate: pubDate}
	if group != nil {
		post.GroupID = &group.ID
	}
	s.Require().NoError(s.posts.CreatePost(s.ctx, post))
	return post
}

func (s *RepositoryTestSuite) TestCreatePostStampsPubDate() {
	before := time.Now().UTC().Add(-time.Second)
	post := &models.Post{Text: "Новый пост", AuthorID: s.author.ID}
	s.Require().NoError(s.posts.CreatePost(s.ctx, post))

	s.NotZero(post.ID)
	s.True(post.PubDate.After(before))
}

func (s *RepositoryTestSuite) TestListPostsNewestFirst() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	oldest := s.createPost(s.author, nil, "oldest", base)
	newest := s.createPost(s.author, nil, "newest", base.Add(2*time.Hour))
	middle := s.createPost(s.reader, s.group, "middle", base.Add(time.Hour))

	posts, err := s.posts.ListPosts(s.ctx, PostFilter{}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 3)
	s.Equal(newest.ID, posts[0].ID)
	s.Equal(middle.ID, posts[1].ID)
	s.Equal(oldest.ID, posts[2].ID)

	s.Require().NotNil(posts[1].Author)
	s.Equal("reader", posts[1].Author.Username)
	s.Require().NotNil(posts[1].Group)
	s.Equal("test-slug", posts[1].Group.Slug)
	s.Nil(posts[0].Group)
}

func (s *RepositoryTestSuite) TestListPostsTieBreaksOnID() {
	same := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first := s.createPost(s.author, nil, "first", same)
	second := s.createPost(s.author, nil, "second", same)

	posts, err := s.posts.ListPosts(s.ctx, PostFilter{}, 10, 0)
	s.Require().NoError(err)
	s.Equal(second.ID, posts[0].ID)
	s.Equal(first.ID, posts[1].ID)
}

func (s *RepositoryTestSuite) TestFilters() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	inGroup := s.createPost(s.author, s.group, "in group", base)
	byReader := s.createPost(s.reader, nil, "by reader", base.Add(time.Minute))

	other := &models.Group{Title: "Другая", Slug: "other"}
	s.Require().NoError(s.groups.CreateGroup(s.ctx, other))
	s.createPost(s.reader, other, "other group", base.Add(2*time.Minute))

	posts, err := s.posts.ListPosts(s.ctx, PostFilter{GroupSlug: "test-slug"}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.Equal(inGroup.ID, posts[0].ID)

	posts, err = s.posts.ListPosts(s.ctx, PostFilter{AuthorUsername: "V.Pupkin"}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.Equal(inGroup.ID, posts[0].ID)

	count, err := s.posts.CountPosts(s.ctx, PostFilter{AuthorID: s.reader.ID})
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	s.Require().NoError(s.follows.Follow(s.ctx, s.author.ID, s.reader.ID))
	posts, err = s.posts.ListPosts(s.ctx, PostFilter{FollowerID: s.author.ID}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 2)
	s.Equal(byReader.ID, posts[1].ID)

	posts, err = s.posts.ListPosts(s.ctx, PostFilter{FollowerID: s.reader.ID}, 10, 0)
	s.Require().NoError(err)
	s.Empty(posts)

	count, err = s.posts.CountPosts(s.ctx, PostFilter{GroupSlug: "missing"})
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RepositoryTestSuite) TestListPostsWindow() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		s.createPost(s.author, nil, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := s.posts.ListPosts(s.ctx, PostFilter{}, 10, 0)
	s.Require().NoError(err)
	s.Len(first, 10)
	s.Equal("post 12", first[0].Text)

	second, err := s.posts.ListPosts(s.ctx, PostFilter{}, 10, 10)
	s.Require().NoError(err)
	s.Len(second, 3)
	s.Equal("post 0", second[2].Text)
}

func (s *RepositoryTestSuite) TestGetPostNotFound() {
	_, err := s.posts.GetPost(s.ctx, 999)
	s.True(errors.Is(err, ErrNotFound))
	s.True(errors.Is(err, ErrPostNotFound))
}

func (s *RepositoryTestSuite) TestUpdatePostKeepsAuthorAndPubDate() {
	pubDate := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	post := s.createPost(s.author, s.group, "before", pubDate)

	edited := &models.Post{ID: post.ID, Text: "after", AuthorID: s.reader.ID, PubDate: time.Now()}
	s.Require().NoError(s.posts.UpdatePost(s.ctx, edited))

	stored, err := s.posts.GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal("after", stored.Text)
	s.Equal(s.author.ID, stored.AuthorID)
	s.True(stored.PubDate.Equal(pubDate))
	s.Nil(stored.GroupID)

	s.ErrorIs(s.posts.UpdatePost(s.ctx, &models.Post{ID: 999, Text: "x"}), ErrPostNotFound)
}

func (s *RepositoryTestSuite) TestDeleteGroupDetachesPosts() {
	post := s.createPost(s.author, s.group, "grouped", time.Now())

	s.Require().NoError(s.groups.DeleteGroup(s.ctx, "test-slug"))

	stored, err := s.posts.GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Nil(stored.GroupID)
	s.Nil(stored.Group)

	_, err = s.groups.GetGroupBySlug(s.ctx, "test-slug")
	s.ErrorIs(err, ErrGroupNotFound)
	s.ErrorIs(s.groups.DeleteGroup(s.ctx, "test-slug"), ErrGroupNotFound)
}

func (s *RepositoryTestSuite) TestDuplicateSlug() {
	err := s.groups.CreateGroup(s.ctx, &models.Group{Title: "Дубль", Slug: "test-slug"})
	s.ErrorIs(err, ErrDuplicate)
}

func (s *RepositoryTestSuite) TestDuplicateUsername() {
	err := s.users.CreateUser(s.ctx, &models.User{Username: "V.Pupkin"})
	s.ErrorIs(err, ErrDuplicate)
}

func (s *RepositoryTestSuite) TestUsernameIsCaseSensitive() {
	_, err := s.users.GetUserByUsername(s.ctx, "v.pupkin")
	s.ErrorIs(err, ErrUserNotFound)

	user, err := s.users.GetUserByUsername(s.ctx, "V.Pupkin")
	s.Require().NoError(err)
	s.Equal(s.author.ID, user.ID)
}

func (s *RepositoryTestSuite) TestCommentsOrderedAndCounted() {
	post := s.createPost(s.author, nil, "with comments", time.Now())
	empty := s.createPost(s.author, nil, "no comments", time.Now())

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.comments.CreateComment(s.ctx, &models.Comment{PostID: post.ID, AuthorID: s.reader.ID, Text: "второй", Created: base.Add(time.Minute)}))
	s.Require().NoError(s.comments.CreateComment(s.ctx, &models.Comment{PostID: post.ID, AuthorID: s.author.ID, Text: "первый", Created: base}))

	comments, err := s.comments.ListComments(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Require().Len(comments, 2)
	s.Equal("первый", comments[0].Text)
	s.Equal("reader", comments[1].Author.Username)

	counts, err := s.comments.CountCommentsByPostIDs(s.ctx, []uint{post.ID, empty.ID})
	s.Require().NoError(err)
	s.Equal(int64(2), counts[post.ID])
	_, ok := counts[empty.ID]
	s.False(ok)

	counts, err = s.comments.CountCommentsByPostIDs(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(counts)
}

func (s *RepositoryTestSuite) TestFollowIsIdempotent() {
	s.Require().NoError(s.follows.Follow(s.ctx, s.reader.ID, s.author.ID))
	s.Require().NoError(s.follows.Follow(s.ctx, s.reader.ID, s.author.ID))

	var count int64
	s.Require().NoError(s.db.Model(&models.Follow{}).Count(&count).Error)
	s.Equal(int64(1), count)

	following, err := s.follows.IsFollowing(s.ctx, s.reader.ID, s.author.ID)
	s.Require().NoError(err)
	s.True(following)

	following, err = s.follows.IsFollowing(s.ctx, s.author.ID, s.reader.ID)
	s.Require().NoError(err)
	s.False(following)

	followers, err := s.follows.CountFollowers(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), followers)
}

func (s *RepositoryTestSuite) TestUnfollow() {
	s.Require().NoError(s.follows.Follow(s.ctx, s.reader.ID, s.author.ID))
	s.Require().NoError(s.follows.Unfollow(s.ctx, s.reader.ID, s.author.ID))
	s.Require().NoError(s.follows.Unfollow(s.ctx, s.reader.ID, s.author.ID))

	following, err := s.follows.IsFollowing(s.ctx, s.reader.ID, s.author.ID)
	s.Require().NoError(err)
	s.False(following)
}

func (s *RepositoryTestSuite) TestDeleteUserCascades() {
	post := s.createPost(s.author, nil, "doomed", time.Now())
	s.Require().NoError(s.comments.CreateComment(s.ctx, &models.Comment{PostID: post.ID, AuthorID: s.reader.ID, Text: "hi"}))
	s.Require().NoError(s.follows.Follow(s.ctx, s.reader.ID, s.author.ID))

	s.Require().NoError(s.users.DeleteUser(s.ctx, s.author.ID))

	_, err := s.posts.GetPost(s.ctx, post.ID)
	s.ErrorIs(err, ErrPostNotFound)

	var follow models.Follow
	s.Require().NoError(s.db.First(&follow).Error)
	s.Nil(follow.AuthorID)
	s.Require().NotNil(follow.UserID)
	s.Equal(s.reader.ID, *follow.UserID)

	s.ErrorIs(s.users.DeleteUser(s.ctx, s.author.ID), ErrUserNotFound)
}
