package service

import (
	"github.com/astro81/pathsala-backend/internal/permission"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// ── auth 11xxx ──

var (
	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthenticated, 11001, "invalid username or password")
	ErrAccountInactive    = apperrors.New(apperrors.KindUnauthenticated, 11002, "account is inactive")
	ErrTokenInvalid       = apperrors.New(apperrors.KindUnauthenticated, 11003, "token is invalid or expired")
	ErrTokenRevoked       = apperrors.New(apperrors.KindUnauthenticated, 11004, "token has been revoked")
)

// ── users 11xxx ──

var (
	ErrUserNotFound          = apperrors.New(apperrors.KindNotFound, 11101, "user not found")
	ErrDuplicateIdentity     = apperrors.New(apperrors.KindConflict, 11102, "username or email already in use")
	ErrImmutableRole         = apperrors.New(apperrors.KindValidation, 11103, "role cannot be changed after creation")
	ErrInvalidRole           = apperrors.New(apperrors.KindValidation, 11104, "unknown role")
	ErrConfirmationMismatch  = apperrors.New(apperrors.KindValidation, 11105, "confirmation does not match the account")
	ErrCannotDeactivateSelf  = apperrors.New(apperrors.KindValidation, 11106, "use self deactivation for your own account")
	ErrAdminSelfDeactivation = apperrors.New(apperrors.KindPermissionDenied, 11107, "admins cannot deactivate themselves")
	ErrStudentProfileMissing = apperrors.New(apperrors.KindNotFound, 16005, "student profile not found")
)

// ── categories 12xxx ──

var (
	ErrCategoryNotFound = apperrors.New(apperrors.KindNotFound, 12001, "category not found")
	ErrCategoryExists   = apperrors.New(apperrors.KindConflict, 12002, "category with this name already exists")
	ErrCategoryBlank    = apperrors.New(apperrors.KindValidation, 12003, "category name must not be blank")
)

// ── courses 13xxx ──

var (
	ErrCourseNotFound      = apperrors.New(apperrors.KindNotFound, 13001, "course not found")
	ErrCourseExists        = apperrors.New(apperrors.KindConflict, 13002, "course with this name already exists")
	ErrDescriptionNotFound = apperrors.New(apperrors.KindNotFound, 13003, "course description not found")
)

// ── ratings 14xxx ──

var (
	ErrRatingNotFound = apperrors.New(apperrors.KindNotFound, 14001, "rating not found")
	ErrAlreadyRated   = apperrors.New(apperrors.KindConflict, 14002, "you have already rated this course")
	ErrRatingRange    = apperrors.New(apperrors.KindValidation, 14003, "rating out of range")
)

// ── syllabus 15xxx ──

var (
	ErrSyllabusNotFound = apperrors.New(apperrors.KindNotFound, 15001, "syllabus section not found")
	ErrSyllabusConflict = apperrors.New(apperrors.KindConflict, 15002, "a section with this title or position already exists")
	ErrTopicConflict    = apperrors.New(apperrors.KindValidation, 15003, "duplicate topic position")
)

// ── enrollment 16xxx ──

var (
	ErrEnrollmentNotFound  = apperrors.New(apperrors.KindNotFound, 16001, "enrollment not found")
	ErrDuplicateEnrollment = apperrors.New(apperrors.KindConflict, 16002, "you have already applied to this course")
	ErrAlreadyApproved     = apperrors.New(apperrors.KindConflict, 16003, "enrollment is already approved")
	ErrNotPending          = apperrors.New(apperrors.KindConflict, 16004, "enrollment is no longer pending")
	ErrInvalidTransition   = apperrors.New(apperrors.KindValidation, 16008, "invalid status transition")
	ErrNotAStudent         = apperrors.New(apperrors.KindPermissionDenied, 16006, "only students can apply to courses")
	ErrExportEmpty         = apperrors.New(apperrors.KindNotFound, 16007, "no enrollments to export")
)

func errPermissionDenied(c permission.Capability) error {
	return apperrors.ErrPermissionDenied.WithMessage("permission denied: " + string(c))
}
