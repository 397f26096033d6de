package model

import (
	"math"

	"gorm.io/gorm"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// CourseRating: course_ratings, one per (course, user).
type CourseRating struct {
	RatingID string  `gorm:"type:uuid;primaryKey"                                  json:"rating_id"`
	CourseID string  `gorm:"type:uuid;not null;uniqueIndex:idx_rating_course_user" json:"course_id"`
	UserID   string  `gorm:"type:uuid;not null;uniqueIndex:idx_rating_course_user" json:"user_id"`
	Rating   float64 `gorm:"type:numeric(3,2);not null"                            json:"rating"`
	Review   string  `gorm:"type:text;not null;default:''"                         json:"review"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName course_ratings
func (CourseRating) TableName() string { return "course_ratings" }

func (r *CourseRating) BeforeCreate(_ *gorm.DB) error {
	if r.RatingID == "" {
		r.RatingID = newID()
	}
	return nil
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
