package dto

// ── pagination ──

// PaginationRequest common paging query.
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number, default 1.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size, default 20.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset for the page.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── auth ──

// TokenResponse token pair.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // access token lifetime, seconds
	User         UserResponse `json:"user"`
}

// ── users ──

// StudentResponse student profile.
type StudentResponse struct {
	Address    string `json:"address,omitempty"`
	PhoneNo    string `json:"phone_no,omitempty"`
	IsApproved bool   `json:"is_approved"`
}

// UserResponse user without secrets.
type UserResponse struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Role      string           `json:"role"`
	IsActive  bool             `json:"is_active"`
	Student   *StudentResponse `json:"student,omitempty"`
}

// UserDetailResponse adds account timestamps and the capability set.
type UserDetailResponse struct {
	UserResponse
	DateJoined   string   `json:"date_joined"`
	LastLogin    string   `json:"last_login,omitempty"`
	Capabilities []string `json:"capabilities"`
}

// ── catalog ──

// CategoryResponse category.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CourseDescriptionResponse course description.
type CourseDescriptionResponse struct {
	Introduction string `json:"introduction"`
	Overview     string `json:"overview"`
	Requirements string `json:"requirements"`
	Context      string `json:"context"`
}

// CourseResponse course with categories.
type CourseResponse struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	Title         string                     `json:"title"`
	DurationWeeks int                        `json:"duration_weeks"`
	Price         float64                    `json:"price"`
	TrainingLevel string                     `json:"training_level"`
	ClassType     string                     `json:"class_type"`
	Overview      string                     `json:"overview"`
	Objectives    []string                   `json:"objectives"`
	Prerequisites []string                   `json:"prerequisites"`
	Outcomes      []string                   `json:"outcomes"`
	Curriculum    []CurriculumItem           `json:"curriculum"`
	AverageRating float64                    `json:"average_rating"`
	Owner         string                     `json:"owner,omitempty"`
	Categories    []CategoryResponse         `json:"categories"`
	Description   *CourseDescriptionResponse `json:"description,omitempty"`
	CreatedAt     string                     `json:"created_at"`
	UpdatedAt     string                     `json:"updated_at"`
}

// RatingResponse one course rating.
type RatingResponse struct {
	ID        string  `json:"id"`
	CourseID  string  `json:"course_id"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username,omitempty"`
	Rating    float64 `json:"rating"`
	Review    string  `json:"review"`
	CreatedAt string  `json:"created_at"`
}

// RatedResponse whether the caller rated a course.
type RatedResponse struct {
	Rated  bool            `json:"rated"`
	Rating *RatingResponse `json:"rating,omitempty"`
}

// TopicResponse syllabus topic.
type TopicResponse struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// SyllabusResponse syllabus section with ordered topics.
type SyllabusResponse struct {
	ID       string          `json:"id"`
	CourseID string          `json:"course_id"`
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Topics   []TopicResponse `json:"topics"`
}

// ── enrollment ──

// EnrollmentResponse enrollment with applicant and course labels.
type EnrollmentResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name,omitempty"`
	Status     string `json:"status"`
	AppliedAt  string `json:"applied_at"`
	ApprovedAt string `json:"approved_at,omitempty"`
	ApprovedBy string `json:"approved_by,omitempty"`
}
