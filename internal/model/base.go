package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel audit columns embedded by every business model.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// Stamp records the actor on create.
func (b *BaseModel) Stamp(actorID string) {
	if actorID == "" {
		return
	}
	b.CreatedBy = &actorID
	b.UpdatedBy = &actorID
}

// Touch records the actor on update.
func (b *BaseModel) Touch(actorID string) {
	if actorID == "" {
		return
	}
	b.UpdatedBy = &actorID
}

func newID() string { return uuid.New().String() }

// All lists every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Student{},
		&Category{},
		&Course{},
		&CourseDescription{},
		&CourseRating{},
		&CourseSyllabus{},
		&SyllabusTopic{},
		&Enrollment{},
	}
}
