package models

import "time"

// User is an account that can author posts and comments and follow others.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email,omitempty"`
	FirstName    string    `gorm:"size:150" json:"first_name,omitempty"`
	LastName     string    `gorm:"size:150" json:"last_name,omitempty"`
	PasswordHash string    `gorm:"type:text" json:"-"`
	IsStaff      bool      `gorm:"default:false" json:"-"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

func (User) TableName() string {
	return "users"
}

// FullName is "First Last", falling back to the username
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

func (u *User) String() string {
	return u.Username
}
