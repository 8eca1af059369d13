package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/repos/testutil"
	"github.com/campushub/campushub-backend/internal/types"
)

func TestFindResolvingToSectionShapes(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewEnrollmentRepo(tx, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, nil)
	sectionA := testutil.SeedSection(t, ctx, tx, course.ID, 30)
	sectionB := testutil.SeedSection(t, ctx, tx, course.ID, 30)
	otherCourse := testutil.SeedCourse(t, ctx, tx, nil)
	otherSection := testutil.SeedSection(t, ctx, tx, otherCourse.ID, 30)

	direct := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
	testutil.SeedSectionEnrollment(t, ctx, tx, direct.ID, sectionA.ID)
	legacy := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
	testutil.SeedCourseEnrollment(t, ctx, tx, legacy.ID, course.ID)

	rows, err := repo.FindResolvingToSection(ctx, tx, direct.ID, sectionA.ID, course.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].SectionID == nil {
		t.Fatalf("rows = %+v, want the one direct row", rows)
	}

	rows, err = repo.FindResolvingToSection(ctx, tx, direct.ID, sectionB.ID, course.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// A direct row targets one section only; it never spills into siblings.
	if len(rows) != 0 {
		t.Fatalf("rows = %+v, want none for sibling section", rows)
	}

	rows, err = repo.FindResolvingToSection(ctx, tx, legacy.ID, sectionB.ID, course.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].CourseID == nil {
		t.Fatalf("rows = %+v, want the course-level row via expansion", rows)
	}

	rows, err = repo.FindResolvingToSection(ctx, tx, legacy.ID, otherSection.ID, otherCourse.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %+v, want none across courses", rows)
	}
}

func TestFindResolvingSurfacesMalformedRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewEnrollmentRepo(tx, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, nil)
	section := testutil.SeedSection(t, ctx, tx, course.ID, 30)
	unrelatedCourse := testutil.SeedCourse(t, ctx, tx, nil)
	unrelatedSection := testutil.SeedSection(t, ctx, tx, unrelatedCourse.ID, 30)

	student := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
	malformed := testutil.SeedMalformedEnrollment(t, ctx, tx, student.ID, section.ID, course.ID)

	// The malformed row must come back even when the probed scope is unrelated,
	// so resolution can refuse instead of answering from corrupt data.
	rows, err := repo.FindResolvingToSection(ctx, tx, student.ID, unrelatedSection.ID, unrelatedCourse.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != malformed.ID {
		t.Fatalf("rows = %+v, want the malformed row surfaced", rows)
	}
	if !rows[0].Malformed() {
		t.Fatalf("row should report malformed")
	}

	rows, err = repo.FindResolvingToCourse(ctx, tx, student.ID, unrelatedCourse.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != malformed.ID {
		t.Fatalf("rows = %+v, want the malformed row surfaced at course scope", rows)
	}
}

func TestCreateClaimingSeatCapacityBoundary(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewEnrollmentRepo(tx, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, nil)
	section := testutil.SeedSection(t, ctx, tx, course.ID, 2)

	for i := 0; i < 2; i++ {
		student := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
		sid := section.ID
		err := repo.CreateClaimingSeat(ctx, tx, &types.Enrollment{
			ID: uuid.New(), StudentID: student.ID, SectionID: &sid,
		})
		if err != nil {
			t.Fatalf("seat %d: unexpected err: %v", i+1, err)
		}
	}

	overflow := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
	sid := section.ID
	err := repo.CreateClaimingSeat(ctx, tx, &types.Enrollment{
		ID: uuid.New(), StudentID: overflow.ID, SectionID: &sid,
	})
	if !errors.Is(err, pkgerrors.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}

	var got types.Section
	if err := tx.WithContext(ctx).First(&got, "id = ?", section.ID).Error; err != nil {
		t.Fatalf("reload section: %v", err)
	}
	if got.MemberCount != 2 {
		t.Fatalf("member_count = %d, want exactly capacity", got.MemberCount)
	}
}

// Full sections must reject concurrent claims without handing out phantom seats:
// the conditional update serializes on the row, so with one seat left exactly one
// of N racing transactions wins.
func TestCreateClaimingSeatConcurrent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, db, nil)
	section := testutil.SeedSection(t, ctx, db, course.ID, 1)
	students := make([]*types.User, 4)
	for i := range students {
		students[i] = testutil.SeedUser(t, ctx, db, types.RoleStudent)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM enrollments WHERE section_id = ?", section.ID)
		db.Exec("DELETE FROM sections WHERE id = ?", section.ID)
		db.Exec("DELETE FROM courses WHERE id = ?", course.ID)
		for _, s := range students {
			db.Exec("DELETE FROM users WHERE id = ?", s.ID)
		}
	})

	var g errgroup.Group
	results := make([]error, len(students))
	for i, student := range students {
		i, student := i, student
		g.Go(func() error {
			results[i] = db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
				sid := section.ID
				return repo.CreateClaimingSeat(ctx, txn, &types.Enrollment{
					ID: uuid.New(), StudentID: student.ID, SectionID: &sid,
				})
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	won := 0
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, pkgerrors.ErrCapacityExceeded):
		default:
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}

	var got types.Section
	if err := db.WithContext(ctx).First(&got, "id = ?", section.ID).Error; err != nil {
		t.Fatalf("reload section: %v", err)
	}
	if got.MemberCount != 1 {
		t.Fatalf("member_count = %d, want 1", got.MemberCount)
	}
}

// A duplicate claim that slips past the membership pre-check lands on the
// partial unique index and must come back as AlreadyEnrolled, not as a store
// failure, with the claimed seat rolled back.
func TestCreateClaimingSeatDuplicateStudent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, db, nil)
	section := testutil.SeedSection(t, ctx, db, course.ID, 5)
	student := testutil.SeedUser(t, ctx, db, types.RoleStudent)
	t.Cleanup(func() {
		db.Exec("DELETE FROM enrollments WHERE section_id = ?", section.ID)
		db.Exec("DELETE FROM sections WHERE id = ?", section.ID)
		db.Exec("DELETE FROM courses WHERE id = ?", course.ID)
		db.Exec("DELETE FROM users WHERE id = ?", student.ID)
	})

	claim := func() error {
		return db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
			sid := section.ID
			return repo.CreateClaimingSeat(ctx, txn, &types.Enrollment{
				ID: uuid.New(), StudentID: student.ID, SectionID: &sid,
			})
		})
	}

	if err := claim(); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := claim(); !errors.Is(err, pkgerrors.ErrAlreadyEnrolled) {
		t.Fatalf("err = %v, want ErrAlreadyEnrolled", err)
	}

	var got types.Section
	if err := db.WithContext(ctx).First(&got, "id = ?", section.ID).Error; err != nil {
		t.Fatalf("reload section: %v", err)
	}
	if got.MemberCount != 1 {
		t.Fatalf("member_count = %d, want the duplicate's increment rolled back", got.MemberCount)
	}
}

func TestDeleteReleasingSeat(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewEnrollmentRepo(tx, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, nil)
	section := testutil.SeedSection(t, ctx, tx, course.ID, 5)
	student := testutil.SeedUser(t, ctx, tx, types.RoleStudent)
	sid := section.ID
	if err := repo.CreateClaimingSeat(ctx, tx, &types.Enrollment{
		ID: uuid.New(), StudentID: student.ID, SectionID: &sid,
	}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := repo.DeleteReleasingSeat(ctx, tx, student.ID, section.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	var got types.Section
	if err := tx.WithContext(ctx).First(&got, "id = ?", section.ID).Error; err != nil {
		t.Fatalf("reload section: %v", err)
	}
	if got.MemberCount != 0 {
		t.Fatalf("member_count = %d, want 0 after release", got.MemberCount)
	}

	// Second release finds nothing.
	if err := repo.DeleteReleasingSeat(ctx, tx, student.ID, section.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
