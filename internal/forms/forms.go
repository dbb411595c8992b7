// Package forms validates post and comment submissions.
package forms

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/afivan20/yatube/internal/models"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/afivan20/yatube/internal/storage"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired      = "Обязательное поле."
	MsgInvalidChoice = "Выберите корректный вариант. Вашего варианта нет среди допустимых значений."
	MsgInvalidImage  = "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением."
	MsgImageTooLarge = "Файл слишком большой."
)

// Errors maps a form field to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Get(field string) []string {
	return e[field]
}

// PostForm is the create/edit submission. Group is the raw select value:
// empty for "no group", otherwise a group id.
type PostForm struct {
	Text       string `form:"text" validate:"required"`
	Group      string `form:"group" validate:"omitempty,number"`
	ClearImage bool   `form:"image-clear"`

	Image *storage.Image `form:"-" validate:"-"`
}

// CleanPost is a PostForm that passed validation.
type CleanPost struct {
	Text       string
	GroupID    *uint
	Image      *storage.Image
	ClearImage bool
}

// CommentForm is the add-comment submission.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

// GroupLookup resolves a group by id.
type GroupLookup interface {
	GetGroup(ctx context.Context, groupID uint) (*models.Group, error)
}

type Validator struct {
	validate *validator.Validate
	groups   GroupLookup
}

func NewValidator(groups GroupLookup) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v, groups: groups}
}

// ValidatePost trims the text and checks every field. On failure the
// returned Errors is non-empty and CleanPost is nil.
func (v *Validator) ValidatePost(ctx context.Context, form *PostForm) (*CleanPost, Errors, error) {
	errs := Errors{}
	form.Text = strings.TrimSpace(form.Text)
	form.Group = strings.TrimSpace(form.Group)

	v.collect(form, errs)

	clean := &CleanPost{Text: form.Text, Image: form.Image, ClearImage: form.ClearImage}

	if form.Group != "" && !errs.Has("group") {
		id, err := strconv.ParseUint(form.Group, 10, 64)
		if err != nil {
			errs.Add("group", MsgInvalidChoice)
		} else {
			group, err := v.groups.GetGroup(ctx, uint(id))
			switch {
			case errors.Is(err, repository.ErrNotFound):
				errs.Add("group", MsgInvalidChoice)
			case err != nil:
				return nil, nil, err
			default:
				clean.GroupID = &group.ID
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return clean, errs, nil
}

// ValidateComment returns the trimmed comment text.
func (v *Validator) ValidateComment(form *CommentForm) (string, Errors) {
	errs := Errors{}
	form.Text = strings.TrimSpace(form.Text)
	v.collect(form, errs)
	if len(errs) > 0 {
		return "", errs
	}
	return form.Text, errs
}

func (v *Validator) collect(form interface{}, errs Errors) {
	err := v.validate.Struct(form)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("__all__", err.Error())
		return
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs.Add(fe.Field(), MsgRequired)
		default:
			errs.Add(fe.Field(), MsgInvalidChoice)
		}
	}
}
