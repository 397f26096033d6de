package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/testutil"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/metrics"
)

func TestEnrollment_ApproveLifecycle(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	course := testutil.CreateCourse(t, env.db, "Go 101")

	applied, err := env.svc.Enrollment.Apply(ctx, student, &dto.ApplyEnrollmentRequest{CourseID: course.CourseID})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, applied.Status)
	assert.Empty(t, applied.ApprovedAt)
	assert.Empty(t, applied.ApprovedBy)
	assert.False(t, testutil.Reload(t, env.db, student.UserID).Student.IsApproved)

	approved, err := env.svc.Enrollment.Approve(ctx, env.moderator, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, approved.Status)
	assert.Equal(t, "mod (moderator)", approved.ApprovedBy)
	assert.NotEmpty(t, approved.ApprovedAt)
	assert.Equal(t, "Go 101", approved.CourseName)
	assert.Equal(t, "asha", approved.Username)
	assert.True(t, testutil.Reload(t, env.db, student.UserID).Student.IsApproved)

	// terminal: neither decision applies again and the record is untouched
	_, err = env.svc.Enrollment.Approve(ctx, env.admin, applied.ID)
	assert.True(t, errors.Is(err, ErrAlreadyApproved), "got %v", err)
	_, err = env.svc.Enrollment.Deny(ctx, env.admin, applied.ID)
	assert.True(t, errors.Is(err, ErrAlreadyApproved), "got %v", err)

	again, err := env.svc.Enrollment.Get(ctx, student, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ApprovedBy, again.ApprovedBy)
	assert.Equal(t, approved.ApprovedAt, again.ApprovedAt)
}

func TestEnrollment_DenyLeavesApprovalUnset(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	course := testutil.CreateCourse(t, env.db, "Go 101")

	applied, err := env.svc.Enrollment.Apply(ctx, student, &dto.ApplyEnrollmentRequest{CourseID: course.CourseID})
	require.NoError(t, err)

	denied, err := env.svc.Enrollment.Patch(ctx, env.moderator, applied.ID, &dto.PatchEnrollmentRequest{Status: model.EnrollmentDenied})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentDenied, denied.Status)
	assert.Empty(t, denied.ApprovedAt)
	assert.Empty(t, denied.ApprovedBy)
	assert.False(t, testutil.Reload(t, env.db, student.UserID).Student.IsApproved)

	_, err = env.svc.Enrollment.Approve(ctx, env.moderator, applied.ID)
	assert.True(t, errors.Is(err, ErrNotPending), "got %v", err)
}

func TestEnrollment_ApplyRules(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	course := testutil.CreateCourse(t, env.db, "Go 101")
	req := &dto.ApplyEnrollmentRequest{CourseID: course.CourseID}

	_, err := env.svc.Enrollment.Apply(ctx, student, req)
	require.NoError(t, err)

	_, err = env.svc.Enrollment.Apply(ctx, student, req)
	assert.True(t, errors.Is(err, ErrDuplicateEnrollment), "got %v", err)

	_, err = env.svc.Enrollment.Apply(ctx, env.moderator, req)
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))

	_, err = env.svc.Enrollment.Apply(ctx, student, &dto.ApplyEnrollmentRequest{CourseID: "6f1c2b1e-0000-4000-8000-000000000000"})
	assert.True(t, errors.Is(err, ErrCourseNotFound), "got %v", err)
}

func TestEnrollment_Reapply(t *testing.T) {
	tests := []struct {
		name  string
		allow bool
	}{
		{"refused by default", false},
		{"reopened when allowed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newSQLEnv(t)
			env.cfg.Enrollment.AllowReapplyAfterDenial = tt.allow
			svc := NewEnrollmentService(&env.cfg.Enrollment, env.repo, permission.MustDefault(), nil, zap.NewNop())
			ctx := context.Background()

			student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
			course := testutil.CreateCourse(t, env.db, "Go 101")
			req := &dto.ApplyEnrollmentRequest{CourseID: course.CourseID}

			first, err := svc.Apply(ctx, student, req)
			require.NoError(t, err)
			_, err = svc.Deny(ctx, env.moderator, first.ID)
			require.NoError(t, err)

			again, err := svc.Apply(ctx, student, req)
			if !tt.allow {
				assert.True(t, errors.Is(err, ErrDuplicateEnrollment), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, first.ID, again.ID)
			assert.Equal(t, model.EnrollmentPending, again.Status)
		})
	}
}

func TestEnrollment_ApproveRollsBackWithoutStudentProfile(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	course := testutil.CreateCourse(t, env.db, "Go 101")

	// a student account whose profile row is missing
	orphan := &model.User{Username: "orphan", Email: "orphan@example.com", PasswordHash: "x", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, env.db.Create(orphan).Error)

	applied, err := env.svc.Enrollment.Apply(ctx, orphan, &dto.ApplyEnrollmentRequest{CourseID: course.CourseID})
	require.NoError(t, err)

	_, err = env.svc.Enrollment.Approve(ctx, env.admin, applied.ID)
	assert.True(t, errors.Is(err, ErrStudentProfileMissing), "got %v", err)

	var e model.Enrollment
	require.NoError(t, env.db.First(&e, "enrollment_id = ?", applied.ID).Error)
	assert.Equal(t, model.EnrollmentPending, e.Status)
	assert.Nil(t, e.ApprovedAt)
	assert.Nil(t, e.ApprovedBy)
}

func TestEnrollment_ConcurrentApproveSingleWinner(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	course := testutil.CreateCourse(t, env.db, "Go 101")

	applied, err := env.svc.Enrollment.Apply(ctx, student, &dto.ApplyEnrollmentRequest{CourseID: course.CourseID})
	require.NoError(t, err)

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := env.admin
			if i%2 == 1 {
				actor = env.moderator
			}
			_, errs[i] = env.svc.Enrollment.Approve(ctx, actor, applied.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, ErrAlreadyApproved), "got %v", err)
	}
	assert.Equal(t, 1, ok)
}

func TestEnrollment_LostRaceReportsWinnerState(t *testing.T) {
	repo, mocks := newMockRepository()
	m := metrics.New()
	svc := NewEnrollmentService(&config.EnrollmentConfig{}, repo, permission.MustDefault(), m, zap.NewNop())
	ctx := context.Background()

	mocks.students.students["user-asha"] = &model.Student{UserID: "user-asha"}
	mocks.enrollments.enrollments["enr-1"] = &model.Enrollment{
		EnrollmentID: "enr-1", UserID: "user-asha", CourseID: "course-go", Status: model.EnrollmentPending,
	}
	mocks.enrollments.loseNextCAS = true

	admin := &model.User{UserID: "user-root", Username: "root", Role: model.RoleAdmin, IsActive: true}
	_, err := svc.Deny(ctx, admin, "enr-1")
	assert.True(t, errors.Is(err, ErrAlreadyApproved), "got %v", err)
	assert.Equal(t, model.EnrollmentApproved, mocks.enrollments.enrollments["enr-1"].Status)
	assert.False(t, mocks.students.students["user-asha"].IsApproved, "loser must not touch the student")
}

func TestEnrollment_PatchRejectsOtherStatuses(t *testing.T) {
	repo, mocks := newMockRepository()
	svc := NewEnrollmentService(nil, repo, permission.MustDefault(), nil, zap.NewNop())
	mocks.enrollments.enrollments["enr-1"] = &model.Enrollment{EnrollmentID: "enr-1", Status: model.EnrollmentPending}
	admin := &model.User{UserID: "user-root", Username: "root", Role: model.RoleAdmin, IsActive: true}

	_, err := svc.Patch(context.Background(), admin, "enr-1", &dto.PatchEnrollmentRequest{Status: model.EnrollmentPending})
	assert.True(t, errors.Is(err, ErrInvalidTransition), "got %v", err)
	assert.Equal(t, model.EnrollmentPending, mocks.enrollments.enrollments["enr-1"].Status)
}

func TestEnrollment_Visibility(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	asha := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	ravi := testutil.CreateUser(t, env.db, "ravi", model.RoleStudent)
	course := testutil.CreateCourse(t, env.db, "Go 101")
	other := testutil.CreateCourse(t, env.db, "Rust 101")

	mine, err := env.svc.Enrollment.Apply(ctx, asha, &dto.ApplyEnrollmentRequest{CourseID: course.CourseID})
	require.NoError(t, err)
	_, err = env.svc.Enrollment.Apply(ctx, ravi, &dto.ApplyEnrollmentRequest{CourseID: other.CourseID})
	require.NoError(t, err)

	_, err = env.svc.Enrollment.Get(ctx, ravi, mine.ID)
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))
	_, err = env.svc.Enrollment.Get(ctx, env.moderator, mine.ID)
	assert.NoError(t, err)

	list, total, err := env.svc.Enrollment.Mine(ctx, asha, &dto.EnrollmentListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, mine.ID, list[0].ID)

	_, _, err = env.svc.Enrollment.List(ctx, asha, &dto.EnrollmentListRequest{})
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))

	_, total, err = env.svc.Enrollment.List(ctx, env.moderator, &dto.EnrollmentListRequest{Status: model.EnrollmentPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(env.svc.Enrollment.Delete(ctx, env.moderator, mine.ID)))
	require.NoError(t, env.svc.Enrollment.Delete(ctx, env.admin, mine.ID))
	_, err = env.svc.Enrollment.Get(ctx, asha, mine.ID)
	assert.True(t, errors.Is(err, ErrEnrollmentNotFound), "got %v", err)
}
