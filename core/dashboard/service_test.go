package dashboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/core/dashboard"
	"github.com/tkalearning/lms/core/progress"
	"github.com/tkalearning/lms/storage/database/sqlx"
	"github.com/tkalearning/lms/tests"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{completed: 0, total: 0, want: 0},
		{completed: 0, total: 5, want: 0},
		{completed: 2, total: 5, want: 40},
		{completed: 1, total: 3, want: 100.0 / 3},
		{completed: 5, total: 5, want: 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dashboard.Percentage(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestService_Compute(t *testing.T) {
	db := testutil.PrepareDB(t)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	usr := testutil.CreateUser(t, sqlxrepos.NewUserRepository(db), "ada", "", "", false)
	auth := usr.AuthContext()
	ctx := context.Background()

	svc := dashboard.NewService(sqlxrepos.NewDashboardRepository(db))
	prgSvc := progress.NewService(sqlxrepos.NewProgressRepository(db), course.NewService(crsRepo))

	// empty catalog
	dash, err := svc.Compute(ctx, auth)
	require.NoError(t, err)
	assert.Zero(t, dash.TotalCourses)
	assert.Zero(t, dash.CompletionPercentage)
	assert.Empty(t, dash.Completed)
	assert.NotNil(t, dash.Completed)
	assert.NotNil(t, dash.InProgress)

	courses := make([]course.Course, 0, 5)
	for _, title := range []string{
		"Introduction to Photography",
		"Video Production Basics",
		"Advanced Canva Design",
		"Robotics for beginners",
		"Introduction to Machine Learning",
	} {
		courses = append(courses, testutil.CreateCourse(t, crsRepo, title, ""))
	}

	toggle := func(courseID int) {
		_, err := prgSvc.ToggleCompletion(ctx, auth, courseID)
		require.NoError(t, err)
	}
	toggle(courses[0].ID) // complete
	toggle(courses[1].ID) // complete
	toggle(courses[2].ID) // complete...
	toggle(courses[2].ID) // ...then incomplete

	dash, err = svc.Compute(ctx, auth)
	require.NoError(t, err)
	assert.Equal(t, 5, dash.TotalCourses)
	assert.Equal(t, 2, dash.CompletedCount)
	assert.Equal(t, 1, dash.InProgressCount)
	assert.Equal(t, 40.0, dash.CompletionPercentage)
	assert.LessOrEqual(t, dash.CompletedCount+dash.InProgressCount, dash.TotalCourses)

	completedIDs := []int{dash.Completed[0].ID, dash.Completed[1].ID}
	assert.ElementsMatch(t, []int{courses[0].ID, courses[1].ID}, completedIDs)
	require.Len(t, dash.InProgress, 1)
	assert.Equal(t, courses[2].ID, dash.InProgress[0].ID)
	assert.Equal(t, "Advanced Canva Design", dash.InProgress[0].Title)

	// untouched courses are in neither list
	for _, status := range append(dash.Completed, dash.InProgress...) {
		assert.NotContains(t, []int{courses[3].ID, courses[4].ID}, status.ID)
	}

	_, err = svc.Compute(ctx, core.AuthContext{})
	assert.Equal(t, core.ErrUnauthenticated, err)
}
