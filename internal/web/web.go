// Package web holds the server-rendered HTML templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/afivan20/yatube/internal/util"
)

//go:embed templates
var templateFS embed.FS

// Templates parses every page and include. media resolves a stored image
// key to its public URL.
func Templates(media func(key string) string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs(media)).ParseFS(templateFS,
		"templates/includes/*.html",
		"templates/posts/*.html",
		"templates/about/*.html",
		"templates/users/*.html",
		"templates/core/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Funcs are the helpers available to every template.
func Funcs(media func(key string) string) template.FuncMap {
	return template.FuncMap{
		"truncatechars": util.Truncate,
		"date":          FormatDate,
		"linebreaksbr":  linebreaksbr,
		"media": func(key string) string {
			if media == nil {
				return key
			}
			return media(key)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"dict":     dict,
		"pageURL":  pageURL,
		"contains": containsUint,
	}
}

var months = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDate renders t as "2 января 2024".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

func linebreaksbr(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict needs key/value pairs, got %d args", len(pairs))
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func pageURL(number int) string {
	return "?" + url.Values{"page": {fmt.Sprint(number)}}.Encode()
}

func containsUint(id *uint, want uint) bool {
	return id != nil && *id == want
}
