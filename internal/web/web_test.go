package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/forms"
	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/paginator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesDefineEveryPage(t *testing.T) {
	tmpl, err := Templates(nil)
	require.NoError(t, err)

	for _, name := range []string{
		"posts/index.html", "posts/group_list.html", "posts/profile.html",
		"posts/post_detail.html", "posts/create_post.html", "posts/follow.html",
		"about/author.html", "about/tech.html",
		"users/login.html", "users/signup.html", "users/logged_out.html",
		"core/404.html", "core/500.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestIndexRendersCardsAndPaginator(t *testing.T) {
	tmpl, err := Templates(func(key string) string { return "/media/" + key })
	require.NoError(t, err)

	group := &models.Group{ID: 1, Title: "Коты", Slug: "cats"}
	author := &models.User{ID: 1, Username: "leo"}
	posts := []*models.Post{
		{ID: 2, Text: "строка\nвторая <b>", Author: author, Group: group, Image: "posts/a.gif", PubDate: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)},
		{ID: 1, Text: "без группы", Author: author},
	}
	f := &feed.Feed{
		Page:          paginator.FromWindow(paginator.NewWindow(12, 10, 2), posts),
		CommentCounts: map[uint]int64{2: 3},
	}

	var out bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&out, "posts/index.html", map[string]interface{}{
		"Title":  "Последние обновления на сайте",
		"Feed":   f,
		"User":   (*models.User)(nil),
		"Year":   2024,
		"Errors": forms.Errors{},
	}))

	body := out.String()
	assert.Contains(t, body, "строка<br>вторая &lt;b&gt;")
	assert.Contains(t, body, `src="/media/posts/a.gif"`)
	assert.Contains(t, body, "8 марта 2024")
	assert.Contains(t, body, "Комментариев: 3")
	assert.Contains(t, body, `href="/group/cats/"`)
	assert.Contains(t, body, `href="?page=1"`)
	assert.NotContains(t, body, "Следующая")
	assert.Contains(t, body, "Войти")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "1 января 2024", FormatDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31 декабря 1999", FormatDate(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, 1, m["a"])

	_, err = dict("odd")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}
