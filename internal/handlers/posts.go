package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/forms"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/metrics"
	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/afivan20/yatube/internal/telemetry"
	"github.com/afivan20/yatube/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IndexTitle  = "Последние обновления на сайте"
	FollowTitle = "Мои подписки"
)

// Index lists every post, newest first.
// GET /
func (h *Handlers) Index(c *gin.Context) {
	f, err := h.feed.Global(c.Request.Context(), pageNumber(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/index.html", gin.H{
		"Title": IndexTitle,
		"Feed":  f,
	})
}

// GroupPosts lists the posts of one group.
// GET /group/:slug/
func (h *Handlers) GroupPosts(c *gin.Context) {
	f, err := h.feed.Group(c.Request.Context(), c.Param("slug"), pageNumber(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Title": f.Group.Title,
		"Group": f.Group,
		"Feed":  f.Feed,
	})
}

// Profile lists an author's posts with the viewer's follow state.
// GET /profile/:username/
func (h *Handlers) Profile(c *gin.Context) {
	profile, err := h.feed.Profile(c.Request.Context(), c.Param("username"), auth.UserFrom(c), pageNumber(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Title":     "Профайл пользователя " + profile.Author.FullName(),
		"Profile":   profile,
		"Following": profile.Following,
	})
}

// PostDetail shows one post and its comments, oldest first.
// GET /posts/:id/
func (h *Handlers) PostDetail(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	comments, err := h.comments.ListComments(ctx, post.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	authorPosts, err := h.posts.CountPosts(ctx, repository.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		h.fail(c, err)
		return
	}

	viewer := auth.UserFrom(c)
	h.render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Title":       "Пост " + post.String(),
		"Post":        post,
		"Comments":    comments,
		"AuthorPosts": authorPosts,
		"IsEdit":      viewer != nil && viewer.ID == post.AuthorID,
	})
}

// PostCreate shows and handles the new post form.
// GET, POST /create/
func (h *Handlers) PostCreate(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, http.StatusOK, &forms.PostForm{}, nil, nil)
		return
	}

	user := auth.UserFrom(c)
	ctx, span := telemetry.TracePostWrite(c.Request.Context(), "create", user.ID)
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	form, imageErr := readPostForm(c)
	clean, errs, err := h.forms.ValidatePost(ctx, form)
	if err != nil {
		h.fail(c, err)
		return
	}
	if imageErr != "" {
		errs.Add("image", imageErr)
	}
	if len(errs) > 0 {
		h.renderPostForm(c, http.StatusOK, form, errs, nil)
		return
	}

	post := &models.Post{Text: clean.Text, AuthorID: user.ID, GroupID: clean.GroupID}
	if clean.Image != nil {
		result, saveErr := h.images.SaveImage(ctx, clean.Image)
		if saveErr != nil {
			err = saveErr
			h.fail(c, err)
			return
		}
		post.Image = result.Key
	}

	if err = h.posts.CreatePost(ctx, post); err != nil {
		if post.Image != "" {
			h.discardImage(ctx, post.Image)
		}
		h.fail(c, err)
		return
	}

	metrics.RecordPostCreated()
	logger.Log.Info("Post created", logger.WithPostID(post.ID), logger.WithUserID(user.ID))
	redirect(c, profileURL(user.Username))
}

// PostEdit shows and handles the edit form. Only the author may edit;
// anyone else is sent back to the post.
// GET, POST /posts/:id/edit/
func (h *Handlers) PostEdit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	user := auth.UserFrom(c)
	if user == nil || user.ID != post.AuthorID {
		redirect(c, postURL(post.ID))
		return
	}

	if c.Request.Method != http.MethodPost {
		form := &forms.PostForm{Text: post.Text}
		if post.GroupID != nil {
			form.Group = uintString(*post.GroupID)
		}
		h.renderPostForm(c, http.StatusOK, form, nil, post)
		return
	}

	ctx, span := telemetry.TracePostWrite(c.Request.Context(), "edit", user.ID)
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	form, imageErr := readPostForm(c)
	clean, errs, err := h.forms.ValidatePost(ctx, form)
	if err != nil {
		h.fail(c, err)
		return
	}
	if imageErr != "" {
		errs.Add("image", imageErr)
	}
	if len(errs) > 0 {
		h.renderPostForm(c, http.StatusOK, form, errs, post)
		return
	}

	oldImage := post.Image
	post.Text = clean.Text
	post.GroupID = clean.GroupID
	switch {
	case clean.Image != nil:
		result, saveErr := h.images.SaveImage(ctx, clean.Image)
		if saveErr != nil {
			err = saveErr
			h.fail(c, err)
			return
		}
		post.Image = result.Key
	case clean.ClearImage:
		post.Image = ""
	}

	if err = h.posts.UpdatePost(ctx, post); err != nil {
		if post.Image != "" && post.Image != oldImage {
			h.discardImage(ctx, post.Image)
		}
		h.fail(c, err)
		return
	}

	if oldImage != "" && oldImage != post.Image {
		h.discardImage(ctx, oldImage)
	}

	metrics.RecordPostEdited()
	redirect(c, postURL(post.ID))
}

// AddComment stores a comment and always returns to the post. Invalid
// submissions are dropped.
// POST /posts/:id/comment
func (h *Handlers) AddComment(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	user := auth.UserFrom(c)

	form := &forms.CommentForm{Text: c.PostForm("text")}
	text, errs := h.forms.ValidateComment(form)
	if len(errs) > 0 {
		logger.Log.Debug("Dropping invalid comment",
			logger.WithPostID(post.ID),
			logger.WithUserID(user.ID),
			zap.Any("errors", errs),
		)
		redirect(c, postURL(post.ID))
		return
	}

	ctx, span := telemetry.TraceComment(c.Request.Context(), post.ID)
	err := h.comments.CreateComment(ctx, &models.Comment{PostID: post.ID, AuthorID: user.ID, Text: text})
	telemetry.EndSpan(span, err)
	if err != nil {
		h.fail(c, err)
		return
	}

	metrics.RecordCommentCreated()
	redirect(c, postURL(post.ID))
}

// FollowIndex lists posts by the authors the user follows.
// GET /follow/
func (h *Handlers) FollowIndex(c *gin.Context) {
	f, err := h.feed.Following(c.Request.Context(), auth.UserFrom(c), pageNumber(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Title": FollowTitle,
		"Feed":  f,
	})
}

// ProfileFollow subscribes the user to an author. Following yourself is a no-op.
// GET /profile/:username/follow
func (h *Handlers) ProfileFollow(c *gin.Context) {
	h.changeFollow(c, "follow")
}

// ProfileUnfollow removes the subscription if there is one.
// GET /profile/:username/unfollow
func (h *Handlers) ProfileUnfollow(c *gin.Context) {
	h.changeFollow(c, "unfollow")
}

func (h *Handlers) changeFollow(c *gin.Context, action string) {
	username := c.Param("username")
	user := auth.UserFrom(c)

	ctx, span := telemetry.TraceFollow(c.Request.Context(), action, user.ID, username)
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	author, err := h.users.GetUserByUsername(ctx, username)
	if err != nil {
		h.fail(c, err)
		return
	}

	switch {
	case action == "follow" && author.ID != user.ID:
		err = h.follows.Follow(ctx, user.ID, author.ID)
	case action == "unfollow":
		err = h.follows.Unfollow(ctx, user.ID, author.ID)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	metrics.RecordFollow(action)
	redirect(c, profileURL(author.Username))
}

func (h *Handlers) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		h.NotFound(c)
		return nil, false
	}
	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return post, true
}

func (h *Handlers) renderPostForm(c *gin.Context, status int, form *forms.PostForm, errs forms.Errors, post *models.Post) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if errs == nil {
		errs = forms.Errors{}
	}

	data := gin.H{
		"Title":  "Новый пост",
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"IsEdit": post != nil,
	}
	if post != nil {
		data["Title"] = "Редактировать пост"
		data["Post"] = post
		data["CurrentImage"] = post.Image
	}
	h.render(c, status, "posts/create_post.html", data)
}

// readPostForm builds the form from the request. The image is checked here
// since it needs the raw upload; its message is returned separately.
func readPostForm(c *gin.Context) (*forms.PostForm, string) {
	form := &forms.PostForm{
		Text:       c.PostForm("text"),
		Group:      c.PostForm("group"),
		ClearImage: c.PostForm("image-clear") != "",
	}

	header, err := c.FormFile("image")
	switch {
	case err == nil:
		if header.Size == 0 && header.Filename == "" {
			return form, ""
		}
		img, readErr := forms.ReadImage(header)
		if readErr != nil {
			return form, forms.ImageError(readErr)
		}
		form.Image = img
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return form, forms.MsgInvalidImage
	}
	return form, ""
}

func uintString(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

// discardImage removes an image no post references, either because it was
// replaced or because the write that would have referenced it failed.
func (h *Handlers) discardImage(ctx context.Context, key string) {
	if h.cleanup != nil {
		err := h.cleanup.Submit(key)
		if err == nil {
			return
		}
		logger.Log.Debug("Deleting replaced image inline", zap.String("key", key), zap.Error(err))
	}
	if err := h.images.DeleteImage(ctx, key); err != nil {
		logger.Log.Warn("Failed to delete replaced image", zap.String("key", key), zap.Error(err))
	}
}
