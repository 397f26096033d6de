package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles. A user's role is fixed when the account is created.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleStudent   = "student"
)

// Roles returns every role the identity model knows.
func Roles() []string {
	return []string{RoleAdmin, RoleModerator, RoleStudent}
}

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	for _, r := range Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// User: users
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey"                json:"user_id"`
	Username     string     `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"          json:"-"`
	FirstName    string     `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName     string     `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	Role         string     `gorm:"type:varchar(20);not null;index"     json:"role"`
	IsActive     bool       `gorm:"not null;index"                      json:"is_active"`
	DateJoined   time.Time  `gorm:"not null"                            json:"date_joined"`
	LastLogin    *time.Time `                                           json:"last_login,omitempty"`
	BaseModel

	Student *Student `gorm:"foreignKey:UserID;references:UserID" json:"student,omitempty"`
}

// TableName users
func (User) TableName() string { return "users" }

// BeforeCreate assigns the id and join date.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = newID()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	return nil
}

// Label renders "username (role)", the form stored as an approver.
func (u *User) Label() string {
	return u.Username + " (" + u.Role + ")"
}

// Student: students, 1:1 profile of a student user.
type Student struct {
	UserID     string  `gorm:"type:uuid;primaryKey"       json:"user_id"`
	Address    *string `gorm:"type:varchar(255)"          json:"address,omitempty"`
	PhoneNo    *string `gorm:"type:varchar(16)"           json:"phone_no,omitempty"`
	IsApproved bool    `gorm:"not null;default:false"     json:"is_approved"`
	BaseModel
}

// TableName students
func (Student) TableName() string { return "students" }
