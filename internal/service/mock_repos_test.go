package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/repository"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.UserID == "" {
		u.UserID = "user-" + u.Username
	}
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.add(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	u, ok := m.users[user.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Email, u.FirstName, u.LastName = user.Email, user.FirstName, user.LastName
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id string, active bool, _ string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	return nil
}

func (m *mockUserRepo) SetPassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(u.Username, filters.Keyword) {
				continue
			}
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	m.students[s.UserID] = s
	return nil
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	if s, ok := m.students[userID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) UpdateContact(_ context.Context, s *model.Student) error {
	cur, ok := m.students[s.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Address, cur.PhoneNo = s.Address, s.PhoneNo
	return nil
}

func (m *mockStudentRepo) SetApproved(_ context.Context, userID string, approved bool) error {
	s, ok := m.students[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IsApproved = approved
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	if c.CourseID == "" {
		c.CourseID = "course-" + c.Name
	}
	m.courses[c.CourseID] = c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByName(_ context.Context, name string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.courses[id]
	return ok, nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	m.courses[c.CourseID] = c
	return nil
}

func (m *mockCourseRepo) ReplaceCategories(_ context.Context, c *model.Course, cats []model.Category) error {
	c.Categories = cats
	return nil
}

func (m *mockCourseRepo) SetAverageRating(_ context.Context, id string, avg float64) error {
	c, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.AverageRating = avg
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) List(_ context.Context, _ *repository.CourseListFilters, _, _ int) ([]model.Course, int64, error) {
	var out []model.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCourseRepo) Featured(_ context.Context, _ float64, _ int) ([]model.Course, error) {
	return nil, nil
}

func (m *mockCourseRepo) GetDescription(_ context.Context, _ string) (*model.CourseDescription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) UpsertDescription(_ context.Context, _ *model.CourseDescription) error {
	return nil
}

// ── Mock EnrollmentRepository ──

// mockEnrollmentRepo keeps enrollments in memory. loseNextCAS makes the next
// Approve/Deny behave as if a concurrent writer approved the row first.
type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
	loseNextCAS bool
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment)}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	for _, cur := range m.enrollments {
		if cur.UserID == e.UserID && cur.CourseID == e.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if e.EnrollmentID == "" {
		e.EnrollmentID = "enr-" + e.UserID + "-" + e.CourseID
	}
	m.enrollments[e.EnrollmentID] = e
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Enrollment, error) {
	return m.GetByID(ctx, id)
}

func (m *mockEnrollmentRepo) GetByUserAndCourse(_ context.Context, userID, courseID string) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) cas(id, from string, apply func(e *model.Enrollment)) error {
	e, ok := m.enrollments[id]
	if m.loseNextCAS && ok {
		m.loseNextCAS = false
		now := time.Now()
		by := "rival (moderator)"
		e.Status, e.ApprovedAt, e.ApprovedBy = model.EnrollmentApproved, &now, &by
		return apperrors.ErrOptimisticLock
	}
	if !ok || e.Status != from {
		return apperrors.ErrOptimisticLock
	}
	apply(e)
	return nil
}

func (m *mockEnrollmentRepo) Approve(_ context.Context, id string, at time.Time, approvedBy, _ string) error {
	return m.cas(id, model.EnrollmentPending, func(e *model.Enrollment) {
		e.Status, e.ApprovedAt, e.ApprovedBy = model.EnrollmentApproved, &at, &approvedBy
	})
}

func (m *mockEnrollmentRepo) Deny(_ context.Context, id string, _ string) error {
	return m.cas(id, model.EnrollmentPending, func(e *model.Enrollment) { e.Status = model.EnrollmentDenied })
}

func (m *mockEnrollmentRepo) Reopen(_ context.Context, id string, at time.Time) error {
	return m.cas(id, model.EnrollmentDenied, func(e *model.Enrollment) {
		e.Status, e.AppliedAt = model.EnrollmentPending, at
	})
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.enrollments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.enrollments, id)
	return nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context, f *repository.EnrollmentListFilters, _, _ int) ([]model.Enrollment, int64, error) {
	list, err := m.ListAll(ctx, f)
	return list, int64(len(list)), err
}

func (m *mockEnrollmentRepo) ListAll(_ context.Context, f *repository.EnrollmentListFilters) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range m.enrollments {
		if f != nil {
			if f.Status != "" && e.Status != f.Status {
				continue
			}
			if f.UserID != "" && e.UserID != f.UserID {
				continue
			}
			if f.CourseID != "" && e.CourseID != f.CourseID {
				continue
			}
		}
		out = append(out, *e)
	}
	return out, nil
}

// ── Mock TokenStore ──

type mockTokenStore struct {
	mu         sync.Mutex
	blacklist  map[string]bool
	revokedAt  map[string]time.Time
	failLookup bool
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{blacklist: map[string]bool{}, revokedAt: map[string]time.Time{}}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklist[jti] = true
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookup {
		return false, context.DeadlineExceeded
	}
	return m.blacklist[jti], nil
}

func (m *mockTokenStore) RevokeUserSessions(_ context.Context, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokedAt[userID] = time.Now().Add(time.Second)
	return nil
}

func (m *mockTokenStore) RevokedBefore(_ context.Context, userID string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.revokedAt[userID]
	return t, ok, nil
}

// ── aggregate ──

type mockRepos struct {
	users       *mockUserRepo
	students    *mockStudentRepo
	courses     *mockCourseRepo
	enrollments *mockEnrollmentRepo
}

// newMockRepository assembles an aggregate without a database;
// Transaction then runs against the mocks directly.
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:       newMockUserRepo(),
		students:    newMockStudentRepo(),
		courses:     newMockCourseRepo(),
		enrollments: newMockEnrollmentRepo(),
	}
	return &repository.Repository{
		User:       m.users,
		Student:    m.students,
		Course:     m.courses,
		Enrollment: m.enrollments,
	}, m
}
