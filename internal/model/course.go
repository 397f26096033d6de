package model

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"

	ClassOnline  = "online"
	ClassOffline = "offline"
	ClassHybrid  = "hybrid"

	DefaultDurationWeeks = 4
	FeaturedRatingFloor  = 4.0
	FeaturedLimit        = 5
)

// Course: courses
type Course struct {
	CourseID      string         `gorm:"type:uuid;primaryKey"                     json:"course_id"`
	Name          string         `gorm:"type:varchar(100);not null;uniqueIndex"   json:"name"`
	Title         string         `gorm:"type:varchar(500);not null"               json:"title"`
	DurationWeeks int            `gorm:"not null;default:4"                       json:"duration_weeks"`
	Price         float64        `gorm:"type:numeric(10,2);not null;default:0"    json:"price"`
	TrainingLevel string         `gorm:"type:varchar(20);not null;index"          json:"training_level"`
	ClassType     string         `gorm:"type:varchar(20);not null;index"          json:"class_type"`
	Overview      string         `gorm:"type:text;not null;default:''"            json:"overview"`
	Objectives    string         `gorm:"type:text;not null;default:''"            json:"objectives"`
	Prerequisites string         `gorm:"type:text;not null;default:''"            json:"prerequisites"`
	Outcomes      string         `gorm:"type:text;not null;default:''"            json:"outcomes"`
	Curriculum    datatypes.JSON `                                                json:"curriculum"`
	OwnerID       *string        `gorm:"type:uuid;index"                          json:"owner_id,omitempty"`
	AverageRating float64        `gorm:"type:numeric(3,2);not null;default:0"     json:"average_rating"`
	BaseModel

	Owner       *User              `gorm:"foreignKey:OwnerID;references:UserID"                                        json:"owner,omitempty"`
	Categories  []Category         `gorm:"many2many:course_categories;joinForeignKey:CourseID;joinReferences:CategoryID" json:"categories,omitempty"`
	Description *CourseDescription `gorm:"foreignKey:CourseID;references:CourseID"                                     json:"description,omitempty"`
}

// TableName courses
func (Course) TableName() string { return "courses" }

func (c *Course) BeforeCreate(_ *gorm.DB) error {
	if c.CourseID == "" {
		c.CourseID = newID()
	}
	return nil
}

// IsValidLevel reports whether level is a known training level.
func IsValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// IsValidClassType reports whether t is a known class type.
func IsValidClassType(t string) bool {
	switch t {
	case ClassOnline, ClassOffline, ClassHybrid:
		return true
	}
	return false
}

// SplitLines turns a newline separated text column into a trimmed list.
func SplitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinLines is the inverse of SplitLines.
func JoinLines(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, "\n")
}

// CourseDescription: course_descriptions, 1:1 with a course.
type CourseDescription struct {
	CourseID     string `gorm:"type:uuid;primaryKey"              json:"course_id"`
	Introduction string `gorm:"type:varchar(500);not null;default:''" json:"introduction"`
	Overview     string `gorm:"type:varchar(500);not null;default:''" json:"overview"`
	Requirements string `gorm:"type:varchar(500);not null;default:''" json:"requirements"`
	Context      string `gorm:"type:varchar(500);not null;default:''" json:"context"`
	BaseModel
}

// TableName course_descriptions
func (CourseDescription) TableName() string { return "course_descriptions" }
