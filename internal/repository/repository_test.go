package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/repository"
	"github.com/astro81/pathsala-backend/internal/testutil"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// ── users ──

func TestUserRepo_UniqueUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "ram", model.RoleStudent)

	err := repo.User.Create(ctx, &model.User{Username: "ram", Email: "other@example.com", PasswordHash: "x", Role: model.RoleStudent, IsActive: true})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestUserRepo_UpdateProfileNeverTouchesRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "sita", model.RoleStudent)
	u.Role = model.RoleAdmin
	u.FirstName = "Sita"
	require.NoError(t, repo.User.UpdateProfile(ctx, u))

	got := testutil.Reload(t, db, u.UserID)
	assert.Equal(t, model.RoleStudent, got.Role)
	assert.Equal(t, "Sita", got.FirstName)
}

func TestUserRepo_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "alice", model.RoleStudent)
	testutil.CreateUser(t, db, "bob", model.RoleStudent)
	mod := testutil.CreateUser(t, db, "carol", model.RoleModerator)
	require.NoError(t, repo.User.SetActive(ctx, mod.UserID, false, ""))

	users, total, err := repo.User.List(ctx, &repository.UserListFilters{Role: model.RoleStudent, Ordering: "username"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "alice", users[0].Username)
	assert.NotNil(t, users[0].Student)

	inactive := false
	users, total, err = repo.User.List(ctx, &repository.UserListFilters{IsActive: &inactive}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "carol", users[0].Username)

	_, total, err = repo.User.List(ctx, &repository.UserListFilters{Keyword: "BO"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestUserRepo_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "gone", model.RoleStudent)
	c := testutil.CreateCourse(t, db, "go-101")
	require.NoError(t, repo.Enrollment.Create(ctx, &model.Enrollment{UserID: u.UserID, CourseID: c.CourseID, Status: model.EnrollmentPending}))

	require.NoError(t, repo.User.Delete(ctx, u.UserID))
	_, err := repo.User.GetByID(ctx, u.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.Student.GetByUserID(ctx, u.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.User.Delete(ctx, u.UserID), gorm.ErrRecordNotFound)
}

// ── students ──

func TestStudentRepo_SetApproved(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	s := testutil.CreateUser(t, db, "stu", model.RoleStudent)
	require.NoError(t, repo.Student.SetApproved(ctx, s.UserID, true))
	require.NoError(t, repo.Student.SetApproved(ctx, s.UserID, true))

	got, err := repo.Student.GetByUserID(ctx, s.UserID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	assert.ErrorIs(t, repo.Student.SetApproved(ctx, "00000000-0000-0000-0000-000000000000", true), gorm.ErrRecordNotFound)
}

// ── categories & courses ──

func TestCategoryRepo_ListOrderedAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	web := testutil.CreateCategory(t, db, "Web")
	testutil.CreateCategory(t, db, "AI")
	c := testutil.CreateCourse(t, db, "react")
	require.NoError(t, repo.Course.ReplaceCategories(ctx, c, []model.Category{*web}))

	cats, err := repo.Category.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "AI", cats[0].Name)

	require.NoError(t, repo.Category.Delete(ctx, web.CategoryID))
	got, err := repo.Course.GetByID(ctx, c.CourseID)
	require.NoError(t, err)
	assert.Empty(t, got.Categories)
}

func TestCourseRepo_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	web := testutil.CreateCategory(t, db, "Web")
	a := testutil.CreateCourse(t, db, "django-basics")
	b := testutil.CreateCourse(t, db, "go-advanced")
	require.NoError(t, db.Model(b).Updates(map[string]interface{}{"price": 500, "training_level": model.LevelAdvanced}).Error)
	require.NoError(t, repo.Course.ReplaceCategories(ctx, a, []model.Category{*web}))

	pmin := 200.0
	list, total, err := repo.Course.List(ctx, &repository.CourseListFilters{PriceMin: &pmin}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "go-advanced", list[0].Name)

	list, _, err = repo.Course.List(ctx, &repository.CourseListFilters{Category: "Web"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "django-basics", list[0].Name)
	assert.Len(t, list[0].Categories, 1)

	list, _, err = repo.Course.List(ctx, &repository.CourseListFilters{Name: "GO", TrainingLevel: model.LevelAdvanced}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, _, err = repo.Course.List(ctx, &repository.CourseListFilters{Ordering: "-price"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "go-advanced", list[0].Name)
}

func TestCourseRepo_FeaturedAndDescription(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	for i, avg := range []float64{4.9, 3.2, 4.0, 4.5} {
		c := testutil.CreateCourse(t, db, string(rune('a'+i))+"-course")
		require.NoError(t, repo.Course.SetAverageRating(ctx, c.CourseID, avg))
	}

	featured, err := repo.Course.Featured(ctx, model.FeaturedRatingFloor, model.FeaturedLimit)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, 4.9, featured[0].AverageRating)
	assert.Equal(t, 4.0, featured[2].AverageRating)

	c := featured[0]
	require.NoError(t, repo.Course.UpsertDescription(ctx, &model.CourseDescription{CourseID: c.CourseID, Introduction: "v1"}))
	require.NoError(t, repo.Course.UpsertDescription(ctx, &model.CourseDescription{CourseID: c.CourseID, Introduction: "v2"}))
	d, err := repo.Course.GetDescription(ctx, c.CourseID)
	require.NoError(t, err)
	assert.Equal(t, "v2", d.Introduction)
}

func TestCourseRepo_DeleteRemovesChildren(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "rater", model.RoleStudent)
	c := testutil.CreateCourse(t, db, "to-delete")
	require.NoError(t, repo.Rating.Create(ctx, &model.CourseRating{CourseID: c.CourseID, UserID: u.UserID, Rating: 4}))
	require.NoError(t, repo.Syllabus.Create(ctx, &model.CourseSyllabus{
		CourseID: c.CourseID, Title: "Intro", Position: 1,
		Topics: []model.SyllabusTopic{{Content: "hello", Position: 1}},
	}))

	require.NoError(t, repo.Course.Delete(ctx, c.CourseID))
	ok, err := repo.Course.Exists(ctx, c.CourseID)
	require.NoError(t, err)
	assert.False(t, ok)

	var n int64
	db.Model(&model.SyllabusTopic{}).Count(&n)
	assert.Zero(t, n)
}

// ── ratings ──

func TestRatingRepo_AverageAndUniqueness(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	c := testutil.CreateCourse(t, db, "rated")
	avg, err := repo.Rating.Average(ctx, c.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	for i, v := range []float64{3, 4, 5} {
		u := testutil.CreateUser(t, db, "r"+string(rune('0'+i)), model.RoleStudent)
		require.NoError(t, repo.Rating.Create(ctx, &model.CourseRating{CourseID: c.CourseID, UserID: u.UserID, Rating: v}))
		if i == 0 {
			err := repo.Rating.Create(ctx, &model.CourseRating{CourseID: c.CourseID, UserID: u.UserID, Rating: 1})
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		}
	}

	avg, err = repo.Rating.Average(ctx, c.CourseID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)

	list, total, err := repo.Rating.ListByCourse(ctx, c.CourseID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)
	assert.NotNil(t, list[0].User)
}

// ── syllabus ──

func TestSyllabusRepo_TopicsOrdered(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	c := testutil.CreateCourse(t, db, "outlined")
	s := &model.CourseSyllabus{CourseID: c.CourseID, Title: "Basics", Position: 1}
	require.NoError(t, repo.Syllabus.Create(ctx, s))
	require.NoError(t, repo.Syllabus.ReplaceTopics(ctx, s.SyllabusID, []model.SyllabusTopic{
		{Content: "second", Position: 2},
		{Content: "first", Position: 1},
	}))

	err := repo.Syllabus.Create(ctx, &model.CourseSyllabus{CourseID: c.CourseID, Title: "Other", Position: 1})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	list, err := repo.Syllabus.ListByCourse(ctx, c.CourseID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Topics, 2)
	assert.Equal(t, "first", list[0].Topics[0].Content)
}

// ── enrollments ──

func TestEnrollmentRepo_TransitionIsCompareAndSet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "enr", model.RoleStudent)
	c := testutil.CreateCourse(t, db, "cas")
	e := &model.Enrollment{UserID: u.UserID, CourseID: c.CourseID, Status: model.EnrollmentPending}
	require.NoError(t, repo.Enrollment.Create(ctx, e))

	dup := &model.Enrollment{UserID: u.UserID, CourseID: c.CourseID, Status: model.EnrollmentPending}
	assert.ErrorIs(t, repo.Enrollment.Create(ctx, dup), gorm.ErrDuplicatedKey)

	now := time.Now()
	require.NoError(t, repo.Enrollment.Approve(ctx, e.EnrollmentID, now, "mod (moderator)", ""))
	assert.ErrorIs(t, repo.Enrollment.Approve(ctx, e.EnrollmentID, now, "x", ""), apperrors.ErrOptimisticLock)
	assert.ErrorIs(t, repo.Enrollment.Deny(ctx, e.EnrollmentID, ""), apperrors.ErrOptimisticLock)

	got, err := repo.Enrollment.GetByID(ctx, e.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "mod (moderator)", *got.ApprovedBy)
	assert.NotNil(t, got.Course)
}

func TestRepository_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "tx", model.RoleStudent)
	c := testutil.CreateCourse(t, db, "tx-course")
	e := &model.Enrollment{UserID: u.UserID, CourseID: c.CourseID, Status: model.EnrollmentPending}
	require.NoError(t, repo.Enrollment.Create(ctx, e))

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Enrollment.Approve(ctx, e.EnrollmentID, time.Now(), "a (admin)", ""); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Enrollment.GetByID(ctx, e.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, got.Status)
	assert.Nil(t, got.ApprovedAt)
}

func TestRepository_BeginTxCommit(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	cat := &model.Category{Name: "Committed"}
	require.NoError(t, repo.WithTx(tx).Category.Create(ctx, cat))
	require.NoError(t, tx.Commit().Error)

	got, err := repo.Category.GetByName(ctx, "Committed")
	require.NoError(t, err)
	assert.Equal(t, cat.CategoryID, got.CategoryID)
}
