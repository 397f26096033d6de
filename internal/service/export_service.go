package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

var ErrExportGenerateFail = apperrors.New(apperrors.KindInternal, 16009, "failed to generate spreadsheet")

// ExportService spreadsheet exports.
//
// The workbook is returned as a buffer; the handler sets the download
// headers and writes it out.
type ExportService interface {
	// ExportEnrollments writes the filtered enrollments, one row each,
	// ordered by application time.
	ExportEnrollments(ctx context.Context, actor *model.User, req *dto.EnrollmentListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	oracle *permission.Oracle
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, oracle *permission.Oracle, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, oracle: oracle, logger: logger}
}

var enrollmentHeaders = []string{"Enrollment", "Username", "Email", "Course", "Status", "Applied at", "Approved at", "Approved by"}

func (s *exportService) ExportEnrollments(ctx context.Context, actor *model.User, req *dto.EnrollmentListRequest) (*bytes.Buffer, string, error) {
	if err := authorize(s.oracle, actor, permission.ViewEnrollment); err != nil {
		return nil, "", err
	}

	list, err := s.repo.Enrollment.ListAll(ctx, &repository.EnrollmentListFilters{
		Status:   req.Status,
		CourseID: req.CourseID,
		UserID:   req.UserID,
	})
	if err != nil {
		s.logger.Error("list enrollments for export failed", zap.Error(err))
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", ErrExportEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Enrollments"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}
	if err := fillEnrollmentSheet(f, sheet, list); err != nil {
		s.logger.Error("fill workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}

	s.logger.Info("enrollments exported", zap.Int("rows", len(list)), zap.String("by", actor.Username))
	filename := fmt.Sprintf("enrollments_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf, filename, nil
}

// ── helpers ──

// fillEnrollmentSheet writes the header row and one row per enrollment
// into an existing sheet.
func fillEnrollmentSheet(f *excelize.File, sheet string, list []model.Enrollment) error {
	widths := []float64{38, 20, 28, 28, 12, 22, 22, 28}
	for i, w := range widths {
		col := colName(i)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	for i, h := range enrollmentHeaders {
		if err := f.SetCellValue(sheet, cell(colName(i), 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", cell(colName(len(enrollmentHeaders)-1), 1), headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for i := range list {
		e := &list[i]
		row := i + 2
		var username, email, course string
		if e.User != nil {
			username, email = e.User.Username, e.User.Email
		}
		if e.Course != nil {
			course = e.Course.Name
		}
		values := []interface{}{
			e.EnrollmentID,
			username,
			email,
			course,
			e.Status,
			formatTime(e.AppliedAt),
			formatTimePtr(e.ApprovedAt),
			deref(e.ApprovedBy),
		}
		for c, v := range values {
			if err := f.SetCellValue(sheet, cell(colName(c), row), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// colName maps a zero-based column index to its letter.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
