// Package dto holds the JSON shapes served by the read-only API.
package dto

import (
	"time"

	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/models"
)

// URLResolver turns a stored image key into a public URL.
type URLResolver func(key string) string

// UserResponse is the public user representation (safe for API responses)
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type PostResponse struct {
	ID           uint           `json:"id"`
	Text         string         `json:"text"`
	PubDate      time.Time      `json:"pub_date"`
	Author       *UserResponse  `json:"author"`
	Group        *GroupResponse `json:"group"`
	ImageURL     string         `json:"image_url,omitempty"`
	CommentCount int64          `json:"comment_count"`
}

type CommentResponse struct {
	ID      uint          `json:"id"`
	Text    string        `json:"text"`
	Created time.Time     `json:"created"`
	Author  *UserResponse `json:"author"`
}

// PostDetailResponse is a post with its comments in display order.
type PostDetailResponse struct {
	PostResponse
	Comments []CommentResponse `json:"comments"`
}

// PageResponse mirrors the pagination state the HTML pages render.
type PageResponse struct {
	Results     []PostResponse `json:"results"`
	Count       int            `json:"count"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, Username: u.Username, FullName: u.FullName()}
}

func NewGroupResponse(g *models.Group) *GroupResponse {
	if g == nil {
		return nil
	}
	resp := &GroupResponse{ID: g.ID, Title: g.Title, Slug: g.Slug}
	if g.Description != nil {
		resp.Description = *g.Description
	}
	return resp
}

func NewPostResponse(p *models.Post, commentCount int64, resolve URLResolver) PostResponse {
	resp := PostResponse{
		ID:           p.ID,
		Text:         p.Text,
		PubDate:      p.PubDate,
		Author:       NewUserResponse(p.Author),
		Group:        NewGroupResponse(p.Group),
		CommentCount: commentCount,
	}
	if p.Image != "" && resolve != nil {
		resp.ImageURL = resolve(p.Image)
	}
	return resp
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Created: c.Created,
		Author:  NewUserResponse(c.Author),
	}
}

func NewPostDetailResponse(p *models.Post, comments []*models.Comment, resolve URLResolver) PostDetailResponse {
	resp := PostDetailResponse{
		PostResponse: NewPostResponse(p, int64(len(comments)), resolve),
		Comments:     make([]CommentResponse, 0, len(comments)),
	}
	for _, comment := range comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(comment))
	}
	return resp
}

// NewPageResponse converts one page of a feed.
func NewPageResponse(f *feed.Feed, resolve URLResolver) PageResponse {
	resp := PageResponse{
		Results:     make([]PostResponse, 0, len(f.Page.Items)),
		Count:       f.Page.Count,
		Page:        f.Page.Number,
		TotalPages:  f.Page.TotalPages,
		HasNext:     f.Page.HasNext(),
		HasPrevious: f.Page.HasPrevious(),
	}
	for _, post := range f.Page.Items {
		resp.Results = append(resp.Results, NewPostResponse(post, f.CommentCount(post.ID), resolve))
	}
	return resp
}
