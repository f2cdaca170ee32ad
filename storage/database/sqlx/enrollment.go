package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/core/enrollment"
	"github.com/tkalearning/lms/storage/database"
)

type enrollmentRepository struct {
	repository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{repository: newRepository(db)}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, bool, error) {
	query, args, err := repo.sb.Insert("enrollments").
		Columns("user_id", "course_id", "enrolled_at").
		Values(enr.UserID, enr.CourseID, enr.EnrolledAt.UTC()).
		Suffix("ON CONFLICT (user_id, course_id) DO NOTHING").
		ToSql()
	if err != nil {
		return enrollment.Enrollment{}, false, wrapErr(err, "building query")
	}

	// already enrolled: keep the existing row
	var created bool
	res, err := repo.db.ExecContext(ctx, query, args...)
	switch {
	case err == nil:
		n, err := res.RowsAffected()
		if err != nil {
			return enrollment.Enrollment{}, false, wrapErr(err, "counting inserted rows")
		}
		created = n > 0
	case !database.IsUniqueViolation(err):
		return enrollment.Enrollment{}, false, wrapErr(err, "inserting enrollment")
	}

	query, args, err = repo.sb.Select("id", "user_id", "course_id", "enrolled_at").
		From("enrollments").
		Where(sq.Eq{"user_id": enr.UserID, "course_id": enr.CourseID}).
		ToSql()
	if err != nil {
		return enrollment.Enrollment{}, false, wrapErr(err, "building query")
	}

	var stored enrollment.Enrollment
	if err = repo.db.GetContext(ctx, &stored, query, args...); err != nil {
		return enrollment.Enrollment{}, false, wrapErr(err, "selecting enrollment")
	}
	return stored, created, nil
}

func (repo enrollmentRepository) EnrollmentExists(ctx context.Context, userID, courseID int) (bool, error) {
	query, args, err := repo.sb.Select("COUNT(*)").
		From("enrollments").
		Where(sq.Eq{"user_id": userID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return false, wrapErr(err, "building query")
	}

	var count int
	if err = repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, wrapErr(err, "counting enrollments")
	}
	return count > 0, nil
}

func (repo enrollmentRepository) QueryEnrolledCourses(ctx context.Context, userID int) ([]course.Course, error) {
	query, args, err := repo.sb.Select(qualifiedCourseColumns()...).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where(sq.Eq{"e.user_id": userID}).
		OrderBy("e.enrolled_at DESC", "e.id DESC").
		ToSql()
	if err != nil {
		return nil, wrapErr(err, "building query")
	}

	courses := make([]course.Course, 0)
	if err = repo.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, wrapErr(err, "selecting enrolled courses")
	}
	return courses, nil
}
