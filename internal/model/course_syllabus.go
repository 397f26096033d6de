package model

import "gorm.io/gorm"

// CourseSyllabus: course_syllabi. A numbered section of a course outline.
type CourseSyllabus struct {
	SyllabusID string `gorm:"type:uuid;primaryKey"                                                                        json:"syllabus_id"`
	CourseID   string `gorm:"type:uuid;not null;uniqueIndex:idx_syllabus_course_title;uniqueIndex:idx_syllabus_course_pos" json:"course_id"`
	Title      string `gorm:"type:varchar(255);not null;uniqueIndex:idx_syllabus_course_title"                            json:"title"`
	Position   int    `gorm:"not null;uniqueIndex:idx_syllabus_course_pos"                                                json:"position"`
	BaseModel

	Topics []SyllabusTopic `gorm:"foreignKey:SyllabusID;references:SyllabusID;constraint:OnDelete:CASCADE" json:"topics"`
}

// TableName course_syllabi
func (CourseSyllabus) TableName() string { return "course_syllabi" }

func (s *CourseSyllabus) BeforeCreate(_ *gorm.DB) error {
	if s.SyllabusID == "" {
		s.SyllabusID = newID()
	}
	return nil
}

// SyllabusTopic: syllabus_topics, an ordered entry under a section.
type SyllabusTopic struct {
	TopicID    string `gorm:"type:uuid;primaryKey"                                json:"topic_id"`
	SyllabusID string `gorm:"type:uuid;not null;uniqueIndex:idx_topic_syllabus_pos" json:"syllabus_id"`
	Content    string `gorm:"type:text;not null"                                  json:"content"`
	Position   int    `gorm:"not null;uniqueIndex:idx_topic_syllabus_pos"         json:"position"`
	BaseModel
}

// TableName syllabus_topics
func (SyllabusTopic) TableName() string { return "syllabus_topics" }

func (t *SyllabusTopic) BeforeCreate(_ *gorm.DB) error {
	if t.TopicID == "" {
		t.TopicID = newID()
	}
	return nil
}
