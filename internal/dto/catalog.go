package dto

// ── category DTO ──

// CategoryRequest create / rename a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

// ── course DTO ──

// CurriculumItem one entry of a course curriculum.
type CurriculumItem struct {
	Title   string   `json:"title"   binding:"required,notblank,max=255"`
	Modules []string `json:"modules" binding:"omitempty,dive,max=500"`
}

// CreateCourseRequest new course.
type CreateCourseRequest struct {
	Name          string           `json:"name"           binding:"required,notblank,max=100"`
	Title         string           `json:"title"          binding:"required,notblank,max=500"`
	DurationWeeks *int             `json:"duration_weeks" binding:"omitempty,min=1"`
	Price         float64          `json:"price"          binding:"min=0"`
	TrainingLevel string           `json:"training_level" binding:"required,oneof=beginner intermediate advanced"`
	ClassType     string           `json:"class_type"     binding:"required,oneof=online offline hybrid"`
	Overview      string           `json:"overview"`
	Objectives    []string         `json:"objectives"`
	Prerequisites []string         `json:"prerequisites"`
	Outcomes      []string         `json:"outcomes"`
	Curriculum    []CurriculumItem `json:"curriculum"     binding:"omitempty,dive"`
	CategoryIDs   []string         `json:"category_ids"   binding:"omitempty,dive,uuid"`
}

// UpdateCourseRequest partial course update.
type UpdateCourseRequest struct {
	Name          *string           `json:"name"           binding:"omitempty,notblank,max=100"`
	Title         *string           `json:"title"          binding:"omitempty,notblank,max=500"`
	DurationWeeks *int              `json:"duration_weeks" binding:"omitempty,min=1"`
	Price         *float64          `json:"price"          binding:"omitempty,min=0"`
	TrainingLevel *string           `json:"training_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	ClassType     *string           `json:"class_type"     binding:"omitempty,oneof=online offline hybrid"`
	Overview      *string           `json:"overview"`
	Objectives    *[]string         `json:"objectives"`
	Prerequisites *[]string         `json:"prerequisites"`
	Outcomes      *[]string         `json:"outcomes"`
	Curriculum    *[]CurriculumItem `json:"curriculum"     binding:"omitempty,dive"`
	CategoryIDs   *[]string         `json:"category_ids"   binding:"omitempty,dive,uuid"`
}

// CourseListRequest public course listing query.
type CourseListRequest struct {
	PaginationRequest
	Name          string   `form:"name"           binding:"omitempty,max=100"`
	Title         string   `form:"title"          binding:"omitempty,max=500"`
	PriceMin      *float64 `form:"price_min"      binding:"omitempty,min=0"`
	PriceMax      *float64 `form:"price_max"      binding:"omitempty,min=0"`
	DurationMin   *int     `form:"duration_min"   binding:"omitempty,min=1"`
	DurationMax   *int     `form:"duration_max"   binding:"omitempty,min=1"`
	TrainingLevel string   `form:"training_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	ClassType     string   `form:"class_type"     binding:"omitempty,oneof=online offline hybrid"`
	Category      string   `form:"category"       binding:"omitempty,max=255"`
	RatingMin     *float64 `form:"rating_min"     binding:"omitempty,min=0,max=5"`
	RatingMax     *float64 `form:"rating_max"     binding:"omitempty,min=0,max=5"`
	Ordering      string   `form:"ordering"       binding:"omitempty,max=100"`
}

// CourseDescriptionRequest upsert of the course description.
type CourseDescriptionRequest struct {
	Introduction string `json:"introduction" binding:"max=500"`
	Overview     string `json:"overview"     binding:"max=500"`
	Requirements string `json:"requirements" binding:"max=500"`
	Context      string `json:"context"      binding:"max=500"`
}

// ── rating DTO ──

// RatingRequest create / update own rating.
type RatingRequest struct {
	Rating *float64 `json:"rating" binding:"required,min=0,max=5"`
	Review string   `json:"review" binding:"omitempty,max=2000"`
}

// ── syllabus DTO ──

// TopicRequest one syllabus topic.
type TopicRequest struct {
	Content  string `json:"content"  binding:"required,notblank"`
	Position int    `json:"position" binding:"required,min=1"`
}

// SyllabusRequest create / replace a syllabus section.
type SyllabusRequest struct {
	Title    string         `json:"title"    binding:"required,notblank,max=255"`
	Position int            `json:"position" binding:"required,min=1"`
	Topics   []TopicRequest `json:"topics"   binding:"omitempty,dive"`
}
