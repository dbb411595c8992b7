package dto

import (
	"testing"
	"time"

	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/paginator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolver(key string) string { return "/media/" + key }

func TestNewPostResponse(t *testing.T) {
	desc := "Про котиков"
	groupID := uint(3)
	post := &models.Post{
		ID:       7,
		Text:     "Текст поста",
		PubDate:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		AuthorID: 2,
		Author:   &models.User{ID: 2, Username: "leo", FirstName: "Лев", LastName: "Толстой"},
		GroupID:  &groupID,
		Group:    &models.Group{ID: 3, Title: "Коты", Slug: "cats", Description: &desc},
		Image:    "posts/a.gif",
	}

	resp := NewPostResponse(post, 4, resolver)
	assert.Equal(t, uint(7), resp.ID)
	assert.Equal(t, "leo", resp.Author.Username)
	assert.Equal(t, "Лев Толстой", resp.Author.FullName)
	require.NotNil(t, resp.Group)
	assert.Equal(t, "cats", resp.Group.Slug)
	assert.Equal(t, desc, resp.Group.Description)
	assert.Equal(t, "/media/posts/a.gif", resp.ImageURL)
	assert.Equal(t, int64(4), resp.CommentCount)
}

func TestNewPostResponseWithoutGroupOrImage(t *testing.T) {
	resp := NewPostResponse(&models.Post{ID: 1, Author: &models.User{ID: 1, Username: "a"}}, 0, resolver)
	assert.Nil(t, resp.Group)
	assert.Empty(t, resp.ImageURL)
}

func TestNewPostDetailResponseKeepsCommentOrder(t *testing.T) {
	author := &models.User{ID: 1, Username: "a"}
	comments := []*models.Comment{
		{ID: 1, Text: "первый", Author: author},
		{ID: 2, Text: "второй", Author: author},
	}
	resp := NewPostDetailResponse(&models.Post{ID: 1, Author: author}, comments, nil)
	require.Len(t, resp.Comments, 2)
	assert.Equal(t, "первый", resp.Comments[0].Text)
	assert.Equal(t, int64(2), resp.CommentCount)
}

func TestNewPageResponse(t *testing.T) {
	posts := make([]*models.Post, 0, 3)
	for i := 1; i <= 3; i++ {
		posts = append(posts, &models.Post{ID: uint(i), Author: &models.User{ID: 1, Username: "a"}})
	}
	f := &feed.Feed{
		Page:          paginator.FromWindow(paginator.NewWindow(13, 10, 2), posts),
		CommentCounts: map[uint]int64{2: 5},
	}

	resp := NewPageResponse(f, resolver)
	assert.Equal(t, 13, resp.Count)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)
	assert.False(t, resp.HasNext)
	assert.True(t, resp.HasPrevious)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, int64(5), resp.Results[1].CommentCount)
}
