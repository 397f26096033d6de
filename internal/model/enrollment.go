package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses. pending is the only non-terminal state.
const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentDenied   = "denied"
)

// IsValidEnrollmentStatus reports whether s is a known status.
func IsValidEnrollmentStatus(s string) bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentDenied:
		return true
	}
	return false
}

// Enrollment: enrollments, one per (user, course).
// ApprovedAt and ApprovedBy are written once, on pending → approved.
type Enrollment struct {
	EnrollmentID string     `gorm:"type:uuid;primaryKey"                                      json:"enrollment_id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	Status       string     `gorm:"type:varchar(10);not null;index"                           json:"status"`
	AppliedAt    time.Time  `gorm:"not null"                                                  json:"applied_at"`
	ApprovedAt   *time.Time `                                                                 json:"approved_at,omitempty"`
	ApprovedBy   *string    `gorm:"type:varchar(200)"                                         json:"approved_by,omitempty"`
	BaseModel

	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName enrollments
func (Enrollment) TableName() string { return "enrollments" }

func (e *Enrollment) BeforeCreate(_ *gorm.DB) error {
	if e.EnrollmentID == "" {
		e.EnrollmentID = newID()
	}
	if e.AppliedAt.IsZero() {
		e.AppliedAt = time.Now()
	}
	return nil
}

// IsPending reports whether the enrollment can still be decided.
func (e *Enrollment) IsPending() bool { return e.Status == EnrollmentPending }
