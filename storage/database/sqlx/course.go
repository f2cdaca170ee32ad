package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
)

// likeEscaper escapes the LIKE wildcards of a search text, with \ as the escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var courseColumns = []string{"id", "title", "description", "video_url", "category", "created_at"}

// qualifiedCourseColumns selects the course columns of alias `c` under their plain names.
func qualifiedCourseColumns() []string {
	cols := make([]string, 0, len(courseColumns))
	for _, col := range courseColumns {
		cols = append(cols, "c."+col+" AS "+col)
	}
	return cols
}

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{repository: newRepository(db)}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	query, args, err := repo.sb.Insert("courses").
		Columns("title", "description", "video_url", "category", "created_at").
		Values(crs.Title, crs.Description, crs.VideoURL, crs.Category, crs.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return course.Course{}, wrapErr(err, "building query")
	}

	if err = repo.db.QueryRowxContext(ctx, query, args...).Scan(&crs.ID); err != nil {
		return course.Course{}, wrapErr(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	query, args, err := repo.sb.Select(courseColumns...).From("courses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return course.Course{}, wrapErr(err, "building query")
	}

	var crs course.Course
	if err = repo.db.GetContext(ctx, &crs, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, wrapErr(err, "selecting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	qb := repo.sb.Select(courseColumns...).From("courses")

	if filter != nil {
		// courses with Title or Description matching the search keyword
		if filter.Search != "" {
			val := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
			qb = qb.Where(sq.Or{
				sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, val),
				sq.Expr(`LOWER(description) LIKE ? ESCAPE '\'`, val),
			})
		}
		if filter.Category != "" {
			qb = qb.Where(sq.Eq{"category": filter.Category})
		}
	}

	query, args, err := qb.OrderBy(orderBy(ordering, "id ASC")...).ToSql()
	if err != nil {
		return nil, wrapErr(err, "building query")
	}

	courses := make([]course.Course, 0)
	if err = repo.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, wrapErr(err, "selecting courses")
	}
	return courses, nil
}

func (repo courseRepository) QueryCategories(ctx context.Context) ([]string, error) {
	query, args, err := repo.sb.Select("category").Distinct().From("courses").OrderBy("category ASC").ToSql()
	if err != nil {
		return nil, wrapErr(err, "building query")
	}

	categories := make([]string, 0)
	if err = repo.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, wrapErr(err, "selecting categories")
	}
	return categories, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	query, args, err := repo.sb.Update("courses").
		Set("title", crs.Title).
		Set("description", crs.Description).
		Set("video_url", crs.VideoURL).
		Set("category", crs.Category).
		Where(sq.Eq{"id": crs.ID}).
		ToSql()
	if err != nil {
		return course.Course{}, wrapErr(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return course.Course{}, wrapErr(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int) error {
	query, args, err := repo.sb.Delete("courses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapErr(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}
