package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalearning/lms/storage/database/sqlx"
	"github.com/tkalearning/lms/tests"
)

func Test_dashboardRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	prgRepo := sqlxrepos.NewProgressRepository(db)
	repo := sqlxrepos.NewDashboardRepository(db)
	ctx := context.Background()

	count, err := repo.CountCourses(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	ada := testutil.CreateUser(t, usrRepo, "ada", "", "", false)
	bob := testutil.CreateUser(t, usrRepo, "bob", "", "", false)
	photo := testutil.CreateCourse(t, crsRepo, "Introduction to Photography", "Media")
	video := testutil.CreateCourse(t, crsRepo, "Video Production Basics", "Media")
	canva := testutil.CreateCourse(t, crsRepo, "Advanced Canva Design", "Design")
	testutil.CreateCourse(t, crsRepo, "Robotics for beginners", "")

	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	toggle := func(userID, courseID int, at time.Time) {
		_, err := prgRepo.ToggleProgress(ctx, userID, courseID, at)
		require.NoError(t, err)
	}
	toggle(ada.ID, photo.ID, t1)
	toggle(ada.ID, video.ID, t1.Add(time.Minute))
	toggle(ada.ID, canva.ID, t1.Add(2*time.Minute))
	toggle(ada.ID, canva.ID, t1.Add(3*time.Minute)) // back to incomplete
	toggle(bob.ID, canva.ID, t1)

	count, err = repo.CountCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	completed, err := repo.QueryCoursesByProgress(ctx, ada.ID, true)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, video.ID, completed[0].ID)
	assert.Equal(t, video.Title, completed[0].Title)
	assert.Equal(t, "Media", completed[0].Category)
	assert.True(t, completed[0].CompletedAt.Equal(t1.Add(time.Minute)))
	assert.Equal(t, photo.ID, completed[1].ID)

	inProgress, err := repo.QueryCoursesByProgress(ctx, ada.ID, false)
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, canva.ID, inProgress[0].ID)
	assert.True(t, inProgress[0].CompletedAt.Equal(t1.Add(3*time.Minute)))

	completed, err = repo.QueryCoursesByProgress(ctx, bob.ID, true)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, canva.ID, completed[0].ID)
}
