package handlers

import (
	"net/http"

	"github.com/afivan20/yatube/internal/dto"
	"github.com/afivan20/yatube/internal/util"
	"github.com/gin-gonic/gin"
)

// APIListPosts returns one page of the global feed.
// GET /api/v1/posts
func (h *Handlers) APIListPosts(c *gin.Context) {
	f, err := h.feed.Global(c.Request.Context(), pageNumber(c))
	if util.HandleRepoError(c, err, "posts") {
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(f, h.images.URL))
}

// APIGroupPosts returns one page of a group's feed.
// GET /api/v1/groups/:slug/posts
func (h *Handlers) APIGroupPosts(c *gin.Context) {
	f, err := h.feed.Group(c.Request.Context(), c.Param("slug"), pageNumber(c))
	if util.HandleRepoError(c, err, "group") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"group": dto.NewGroupResponse(f.Group),
		"posts": dto.NewPageResponse(f.Feed, h.images.URL),
	})
}

// APIGetPost returns a post with its comments.
// GET /api/v1/posts/:id
func (h *Handlers) APIGetPost(c *gin.Context) {
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondNotFound(c, "post")
		return
	}
	ctx := c.Request.Context()

	post, err := h.posts.GetPost(ctx, id)
	if util.HandleRepoError(c, err, "post") {
		return
	}
	comments, err := h.comments.ListComments(ctx, post.ID)
	if util.HandleRepoError(c, err, "comments") {
		return
	}
	c.JSON(http.StatusOK, dto.NewPostDetailResponse(post, comments, h.images.URL))
}
