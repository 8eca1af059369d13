package services

import (
	"errors"
	"strings"
	"testing"

	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/types"
)

func newMaterialFixture(t *testing.T) (*fixture, MaterialService, *fakeBucket) {
	t.Helper()
	f := newFixture()
	log := testLogger(t)
	access := NewAccessService(nil, log, &fakeCourseRepo{f}, &fakeSectionRepo{f}, &fakeEnrollmentRepo{f})
	bucket := newFakeBucket()
	svc := NewMaterialService(nil, log, &fakeMaterialRepo{f: f}, access, bucket)
	return f, svc, bucket
}

func TestMaterialUploadWriteGate(t *testing.T) {
	f, svc, bucket := newMaterialFixture(t)
	owner := f.addUser(types.RoleTeacher)
	course := f.addCourse(&owner.ID)
	section := f.addSection(course.ID, 30)
	member := f.addUser(types.RoleStudent)
	f.enrollSection(member.ID, section.ID)

	// Members read, they never write.
	if _, err := svc.Upload(ctxAs(member.ID, types.RoleStudent), nil, section.ID, "Notes", "notes.pdf", fileOf("x")); !errors.Is(err, pkgerrors.ErrNotAuthorized) {
		t.Fatalf("student err = %v, want ErrNotAuthorized", err)
	}

	material, err := svc.Upload(ctxAs(owner.ID, types.RoleTeacher), nil, section.ID, "Notes", "notes.pdf", fileOf("bytes"))
	if err != nil {
		t.Fatalf("owner err: %v", err)
	}
	if !strings.HasSuffix(material.StorageKey, ".pdf") {
		t.Fatalf("storage key %q should keep the extension", material.StorageKey)
	}
	if _, ok := bucket.objects[material.StorageKey]; !ok {
		t.Fatalf("bytes not stored under %q", material.StorageKey)
	}

	got, err := svc.Get(ctxAs(member.ID, types.RoleStudent), nil, material.ID)
	if err != nil {
		t.Fatalf("member get err: %v", err)
	}
	if got.URL == "" {
		t.Fatalf("expected a download url")
	}
}

func TestMaterialDeleteSurvivesBucketFailure(t *testing.T) {
	f, svc, bucket := newMaterialFixture(t)
	owner := f.addUser(types.RoleTeacher)
	course := f.addCourse(&owner.ID)
	section := f.addSection(course.ID, 30)

	ctx := ctxAs(owner.ID, types.RoleTeacher)
	material, err := svc.Upload(ctx, nil, section.ID, "Notes", "notes.pdf", fileOf("bytes"))
	if err != nil {
		t.Fatalf("upload err: %v", err)
	}
	bucket.failDelete = true

	if err := svc.Delete(ctx, nil, material.ID); err != nil {
		t.Fatalf("delete should succeed despite bucket failure, got %v", err)
	}
	if _, err := svc.Get(ctx, nil, material.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}
