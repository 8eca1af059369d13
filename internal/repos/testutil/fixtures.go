package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:    uuid.New(),
		Name:  "u",
		Email: uuid.NewString() + "@test",
		Role:  role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, owningTeacherID *uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:              uuid.New(),
		Title:           "course",
		Code:            uuid.NewString(),
		OwningTeacherID: owningTeacherID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, capacity int) *types.Section {
	tb.Helper()
	s := &types.Section{
		ID:       uuid.New(),
		CourseID: courseID,
		Label:    "A",
		Capacity: capacity,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedSectionEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, sectionID uuid.UUID) *types.Enrollment {
	tb.Helper()
	sid := sectionID
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, SectionID: &sid}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed section enrollment: %v", err)
	}
	return e
}

func SeedCourseEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	cid := courseID
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, CourseID: &cid}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed course enrollment: %v", err)
	}
	return e
}

// SeedMalformedEnrollment writes a row carrying both targets, the shape the
// NOT VALID constraint tolerates in historical data.
func SeedMalformedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, sectionID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	sid, cid := sectionID, courseID
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, SectionID: &sid, CourseID: &cid}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed malformed enrollment: %v", err)
	}
	return e
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, dueAt time.Time) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:        uuid.New(),
		SectionID: sectionID,
		Title:     "hw",
		DueAt:     dueAt,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}
