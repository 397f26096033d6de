package dto

// ── enrollment DTO ──

// ApplyEnrollmentRequest a student applying to a course.
type ApplyEnrollmentRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// PatchEnrollmentRequest decides a pending enrollment.
type PatchEnrollmentRequest struct {
	Status string `json:"status" binding:"required,oneof=approved denied"`
}

// EnrollmentListRequest enrollment listing query.
type EnrollmentListRequest struct {
	PaginationRequest
	Status   string `form:"status"    binding:"omitempty,oneof=pending approved denied"`
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
}
