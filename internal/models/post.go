package models

import (
	"time"

	"gorm.io/gorm"
)

// PreviewLength is how many characters of a post or comment String() shows.
const PreviewLength = 15

// Group is a named topic posts can be filed under.
type Group struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Slug        string  `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Description *string `gorm:"type:text" json:"description"`
}

func (Group) TableName() string {
	return "posts_group"
}

func (g *Group) String() string {
	return g.Title
}

// Post is a text entry with an optional group and image.
// PubDate is assigned once at creation and never rewritten by edits.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"not null;index:idx_posts_pub_date" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	GroupID  *uint     `gorm:"index" json:"group_id"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image    string    `gorm:"size:100" json:"image,omitempty"`
}

func (Post) TableName() string {
	return "posts_post"
}

// BeforeCreate stamps the publication date unless the caller already set one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = tx.NowFunc()
	}
	return nil
}

func (p *Post) String() string {
	return preview(p.Text)
}

// Comment is a reply attached to a post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"not null;index" json:"post_id"`
	Post     *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"not null" json:"created"`
}

func (Comment) TableName() string {
	return "posts_comment"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Created.IsZero() {
		c.Created = tx.NowFunc()
	}
	return nil
}

func (c *Comment) String() string {
	return preview(c.Text)
}

// Follow records that User subscribes to Author. Both sides are nullable so
// deleting either account keeps the row with a null reference.
type Follow struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	UserID   *uint `gorm:"uniqueIndex:unique_in_module" json:"user_id"`
	User     *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	AuthorID *uint `gorm:"uniqueIndex:unique_in_module" json:"author_id"`
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Follow) TableName() string {
	return "posts_follow"
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength])
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}}
}
