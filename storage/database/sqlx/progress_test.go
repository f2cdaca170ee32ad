package sqlxrepos_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalearning/lms/storage/database/sqlx"
	"github.com/tkalearning/lms/tests"
)

func Test_progressRepository_ToggleProgress(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	repo := sqlxrepos.NewProgressRepository(db)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "ada", "", "", false)
	crs := testutil.CreateCourse(t, crsRepo, "Video Production Basics", "")

	_, found, err := repo.GetProgress(ctx, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.False(t, found)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		at := start.Add(time.Duration(i) * time.Minute)
		prg, err := repo.ToggleProgress(ctx, usr.ID, crs.ID, at)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 1, prg.Completed, "toggle #%d", i)
		assert.True(t, prg.CompletedAt.Equal(at), "toggle #%d: completed_at = %v; want %v", i, prg.CompletedAt, at)
	}

	prg, found, err := repo.GetProgress(ctx, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, prg.Completed)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM course_progress"))
	assert.Equal(t, 1, count)
}

func Test_progressRepository_ToggleProgress_concurrent(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	repo := sqlxrepos.NewProgressRepository(db)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "ada", "", "", false)
	crs := testutil.CreateCourse(t, crsRepo, "Robotics for beginners", "")

	const toggles = 8
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ToggleProgress(ctx, usr.ID, crs.ID, time.Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM course_progress"))
	assert.Equal(t, 1, count)

	// an even number of toggles ends incomplete
	prg, found, err := repo.GetProgress(ctx, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, prg.Completed)
}
