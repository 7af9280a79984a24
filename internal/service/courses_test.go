package service_test

import (
	"context"
	"testing"

	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"github.com/robertarktes/batch-seat-reservations/internal/service"
	"github.com/stretchr/testify/require"
)

func TestMemoryCourses_DefaultCatalog(t *testing.T) {
	ctx := context.Background()
	courses := service.NewMemoryCourses()

	list, err := courses.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, id := range domain.CourseIDs {
		require.Equal(t, id, list[i].ID)
	}

	c, err := courses.GetCourse(ctx, " Performance-Marketing ")
	require.NoError(t, err)
	require.Equal(t, "Performance Marketing", c.Title)
	require.Equal(t, "16-Week Live Skill Mastery Program", c.Subtitle)
	require.Len(t, c.Curriculum, 4)
	require.Equal(t, "Weeks 13-16", c.Curriculum[3].Period)

	c, err = courses.GetCourse(ctx, domain.CourseSelfPaced)
	require.NoError(t, err)
	require.Len(t, c.Curriculum, 8)

	c, err = courses.GetCourse(ctx, domain.CourseCareerAccelerator)
	require.NoError(t, err)
	require.Len(t, c.Curriculum, 5)
	require.Contains(t, c.Outcomes, "50+ hiring partners")

	_, err = courses.GetCourse(ctx, "bootcamp")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryCourses_SaveReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	courses := service.NewMemoryCourses(
		domain.Course{ID: "a", Title: "A"},
		domain.Course{ID: "b", Title: "B"},
	)
	require.NoError(t, courses.SaveCourse(ctx, domain.Course{ID: "A", Title: "A2"}))

	list, err := courses.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "A2", list[0].Title)
	require.Equal(t, "b", list[1].ID)
}
