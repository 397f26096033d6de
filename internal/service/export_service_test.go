package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/testutil"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

func TestExportEnrollments(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	asha := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	course := testutil.CreateCourse(t, env.db, "Go 101")

	_, _, err := env.svc.Export.ExportEnrollments(ctx, env.moderator, &dto.EnrollmentListRequest{})
	assert.True(t, errors.Is(err, ErrExportEmpty), "got %v", err)

	applied, err := env.svc.Enrollment.Apply(ctx, asha, &dto.ApplyEnrollmentRequest{CourseID: course.CourseID})
	require.NoError(t, err)
	_, err = env.svc.Enrollment.Approve(ctx, env.moderator, applied.ID)
	require.NoError(t, err)

	_, _, err = env.svc.Export.ExportEnrollments(ctx, asha, &dto.EnrollmentListRequest{})
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))

	buf, filename, err := env.svc.Export.ExportEnrollments(ctx, env.moderator, &dto.EnrollmentListRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "enrollments_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Enrollments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, enrollmentHeaders, rows[0])
	assert.Equal(t, applied.ID, rows[1][0])
	assert.Equal(t, "asha", rows[1][1])
	assert.Equal(t, "Go 101", rows[1][3])
	assert.Equal(t, model.EnrollmentApproved, rows[1][4])
	assert.Equal(t, "mod (moderator)", rows[1][7])
}

func TestColName(t *testing.T) {
	assert.Equal(t, "A", colName(0))
	assert.Equal(t, "H", colName(7))
	assert.Equal(t, "AA", colName(26))
	assert.Equal(t, "B3", cell("B", 3))
}

func TestFillEnrollmentSheet_ReportsWorkbookErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	err := fillEnrollmentSheet(f, "Missing", nil)
	require.Error(t, err)
	var missing excelize.ErrSheetNotExist
	assert.True(t, errors.As(err, &missing), "got %v", err)

	require.NoError(t, fillEnrollmentSheet(f, "Sheet1", []model.Enrollment{{EnrollmentID: "e-1", Status: model.EnrollmentPending}}))
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "e-1", rows[1][0])
}
