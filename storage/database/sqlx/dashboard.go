package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tkalearning/lms/core/dashboard"
)

type dashboardRepository struct {
	repository
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *sqlx.DB) *dashboardRepository {
	return &dashboardRepository{repository: newRepository(db)}
}

func (repo dashboardRepository) CountCourses(ctx context.Context) (int, error) {
	query, args, err := repo.sb.Select("COUNT(*)").From("courses").ToSql()
	if err != nil {
		return 0, wrapErr(err, "building query")
	}

	var count int
	if err = repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, wrapErr(err, "counting courses")
	}
	return count, nil
}

func (repo dashboardRepository) QueryCoursesByProgress(ctx context.Context, userID int, completed bool) ([]dashboard.CourseStatus, error) {
	state := 0
	if completed {
		state = 1
	}

	query, args, err := repo.sb.Select(append(qualifiedCourseColumns(), "p.completed_at AS completed_at")...).
		From("course_progress p").
		Join("courses c ON c.id = p.course_id").
		Where(sq.Eq{"p.user_id": userID, "p.completed": state}).
		OrderBy("p.completed_at DESC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, wrapErr(err, "building query")
	}

	statuses := make([]dashboard.CourseStatus, 0)
	if err = repo.db.SelectContext(ctx, &statuses, query, args...); err != nil {
		return nil, wrapErr(err, "selecting courses by progress")
	}
	return statuses, nil
}
