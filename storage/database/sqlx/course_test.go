package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/storage/database/sqlx"
	"github.com/tkalearning/lms/tests"
)

func courseIDs(courses []course.Course) []int {
	ids := make([]int, 0, len(courses))
	for _, crs := range courses {
		ids = append(ids, crs.ID)
	}
	return ids
}

func Test_courseRepository_QueryCourses(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewCourseRepository(db)
	ctx := context.Background()

	photo := testutil.CreateCourse(t, repo, "Introduction to Photography", "Media", "https://videos.tka.test/photo")
	video := testutil.CreateCourse(t, repo, "Video Production Basics", "Media")
	canva := testutil.CreateCourse(t, repo, "Advanced Canva Design", "Design")
	robots := testutil.CreateCourse(t, repo, "Robotics for beginners", "")

	tests := []struct {
		name     string
		filter   *course.QueryFilter
		ordering []core.DBOrdering
		want     []int
	}{
		{name: "all", want: []int{photo.ID, video.ID, canva.ID, robots.ID}},
		{name: "search title", filter: &course.QueryFilter{Search: "VIDEO"}, want: []int{video.ID}},
		{name: "search description", filter: &course.QueryFilter{Search: "robotics for"}, want: []int{robots.ID}},
		{name: "search unknown", filter: &course.QueryFilter{Search: "lol"}, want: []int{}},
		{name: "search literal %", filter: &course.QueryFilter{Search: "%"}, want: []int{}},
		{name: "search literal _", filter: &course.QueryFilter{Search: "_"}, want: []int{}},
		{name: "category", filter: &course.QueryFilter{Category: "Media"}, want: []int{photo.ID, video.ID}},
		{name: "default category", filter: &course.QueryFilter{Category: course.DefaultCategory}, want: []int{robots.ID}},
		{name: "search & category", filter: &course.QueryFilter{Search: "intro", Category: "Media"}, want: []int{photo.ID}},
		{
			name:     "order by title",
			ordering: []core.DBOrdering{{Field: "title", Ascending: true}},
			want:     []int{canva.ID, photo.ID, robots.ID, video.ID},
		},
		{
			name:     "order by category,-id",
			ordering: []core.DBOrdering{{Field: "category", Ascending: true}, {Field: "id"}},
			want:     []int{canva.ID, robots.ID, video.ID, photo.ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryCourses(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, courseIDs(got))
		})
	}

	got, err := repo.GetCourseByID(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("https://videos.tka.test/photo"), got.VideoURL)
	assert.Equal(t, "Media", got.Category)

	categories, err := repo.QueryCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Design", "General", "Media"}, categories)

	pricing := testutil.CreateCourse(t, repo, "Pricing_101 at 100%", "Business")
	for _, search := range []string{"_", "%", "g_1", "0%"} {
		got, err := repo.QueryCourses(ctx, &course.QueryFilter{Search: search}, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{pricing.ID}, courseIDs(got), "search %q", search)
	}
}

func Test_courseRepository_UpdateDelete(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewCourseRepository(db)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, repo, "Introduction to Machine Learning", "", "https://videos.tka.test/ml")

	crs.Title = "Machine Learning 101"
	crs.VideoURL = null.String{}
	crs.Category = "Data"
	updated, err := repo.UpdateCourse(ctx, crs)
	require.NoError(t, err)
	assert.Equal(t, crs, updated)

	got, err := repo.GetCourseByID(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning 101", got.Title)
	assert.False(t, got.VideoURL.Valid)
	assert.Equal(t, "Data", got.Category)

	_, err = repo.UpdateCourse(ctx, course.Course{ID: 4242, Title: "lol"})
	assert.Equal(t, course.ErrNotFound, err)

	require.NoError(t, repo.DeleteCourse(ctx, crs.ID))
	_, err = repo.GetCourseByID(ctx, crs.ID)
	assert.Equal(t, course.ErrNotFound, err)
	assert.Equal(t, course.ErrNotFound, repo.DeleteCourse(ctx, crs.ID))
}

func Test_courseRepository_closedDB(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewCourseRepository(db)
	require.NoError(t, db.Close())

	_, err := repo.QueryCourses(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err))

	_, err = repo.GetCourseByID(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err))
}
