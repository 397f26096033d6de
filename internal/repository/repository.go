package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Repository aggregates every data-access interface.
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Student    StudentRepository
	Category   CategoryRepository
	Course     CourseRepository
	Rating     RatingRepository
	Syllabus   SyllabusRepository
	Enrollment EnrollmentRepository
}

// NewRepository builds the aggregate over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Student:    NewStudentRepo(db),
		Category:   NewCategoryRepo(db),
		Course:     NewCourseRepo(db),
		Rating:     NewRatingRepo(db),
		Syllabus:   NewSyllabusRepo(db),
		Enrollment: NewEnrollmentRepo(db),
	}
}

// BeginTx opens a transaction; pair with WithTx and Commit/Rollback.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction runs fn against an aggregate bound to one transaction.
// fn returning an error rolls everything back.
//
// An aggregate assembled by hand (no db, as in unit tests with mocks) runs
// fn against itself.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// ── helpers ──

// orderClause turns "-field" / "field" into an ORDER BY fragment, accepting
// only whitelisted columns. Unknown values fall back to def.
func orderClause(ordering string, allowed map[string]string, def string) string {
	if ordering == "" {
		return def
	}
	var parts []string
	for _, f := range strings.Split(ordering, ",") {
		f = strings.TrimSpace(f)
		dir := "ASC"
		if strings.HasPrefix(f, "-") {
			dir = "DESC"
			f = f[1:]
		}
		col, ok := allowed[f]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return def
	}
	return strings.Join(parts, ", ")
}

// likeExpr is a case-insensitive LIKE on col, paired with likePattern.
func likeExpr(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
}

// likePattern builds a case-insensitive contains pattern.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(s))
	return "%" + s + "%"
}

// actorOrNil keeps an empty actor out of uuid audit columns.
func actorOrNil(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

// checkAffected maps a zero-row write onto gorm.ErrRecordNotFound.
func checkAffected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
