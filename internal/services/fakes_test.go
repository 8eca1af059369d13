package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/campushub/campushub-backend/internal/clients/redis"
	"github.com/campushub/campushub-backend/internal/logger"
	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/requestdata"
	"github.com/campushub/campushub-backend/internal/types"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("production")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func ctxAs(userID uuid.UUID, role string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
		Role:   role,
	})
}

// fixture is an in-memory stand-in for the postgres-backed repos. All fakes
// share one state bag so cross-repo lookups (section -> course) line up.
type fixture struct {
	users       map[uuid.UUID]*types.User
	courses     map[uuid.UUID]*types.Course
	sections    map[uuid.UUID]*types.Section
	enrollments []*types.Enrollment
	materials   map[uuid.UUID]*types.Material
	assignments map[uuid.UUID]*types.Assignment
	submissions map[uuid.UUID]*types.Submission
	rooms       map[uuid.UUID]*types.DiscussionRoom
}

func newFixture() *fixture {
	return &fixture{
		users:       map[uuid.UUID]*types.User{},
		courses:     map[uuid.UUID]*types.Course{},
		sections:    map[uuid.UUID]*types.Section{},
		materials:   map[uuid.UUID]*types.Material{},
		assignments: map[uuid.UUID]*types.Assignment{},
		submissions: map[uuid.UUID]*types.Submission{},
		rooms:       map[uuid.UUID]*types.DiscussionRoom{},
	}
}

func (f *fixture) addUser(role string) *types.User {
	u := &types.User{ID: uuid.New(), Name: "u", Email: uuid.NewString() + "@test", Role: role}
	f.users[u.ID] = u
	return u
}

func (f *fixture) addCourse(owningTeacherID *uuid.UUID) *types.Course {
	c := &types.Course{ID: uuid.New(), Title: "course", Code: uuid.NewString(), OwningTeacherID: owningTeacherID}
	f.courses[c.ID] = c
	return c
}

func (f *fixture) addSection(courseID uuid.UUID, capacity int) *types.Section {
	s := &types.Section{ID: uuid.New(), CourseID: courseID, Label: "A", Capacity: capacity}
	f.sections[s.ID] = s
	return s
}

func (f *fixture) enrollSection(studentID, sectionID uuid.UUID) *types.Enrollment {
	sid := sectionID
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, SectionID: &sid}
	f.enrollments = append(f.enrollments, e)
	return e
}

func (f *fixture) enrollCourse(studentID, courseID uuid.UUID) *types.Enrollment {
	cid := courseID
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, CourseID: &cid}
	f.enrollments = append(f.enrollments, e)
	return e
}

func (f *fixture) enrollMalformed(studentID, sectionID, courseID uuid.UUID) *types.Enrollment {
	sid, cid := sectionID, courseID
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, SectionID: &sid, CourseID: &cid}
	f.enrollments = append(f.enrollments, e)
	return e
}

type fakeUserRepo struct{ f *fixture }

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		r.f.users[u.ID] = u
	}
	return users, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.User, error) {
	u, ok := r.f.users[userID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ExistsWithRole(_ context.Context, _ *gorm.DB, userID uuid.UUID, role string) (bool, error) {
	u, ok := r.f.users[userID]
	return ok && u.Role == role, nil
}

type fakeCourseRepo struct{ f *fixture }

func (r *fakeCourseRepo) Create(_ context.Context, _ *gorm.DB, course *types.Course) (*types.Course, error) {
	r.f.courses[course.ID] = course
	return course, nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, _ *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	c, ok := r.f.courses[courseID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) SetOwningTeacher(_ context.Context, _ *gorm.DB, courseID, teacherID uuid.UUID) error {
	c, ok := r.f.courses[courseID]
	if !ok {
		return pkgerrors.ErrNotFound
	}
	tid := teacherID
	c.OwningTeacherID = &tid
	return nil
}

func (r *fakeCourseRepo) OwnedBy(_ context.Context, _ *gorm.DB, courseID, teacherID uuid.UUID) (bool, error) {
	c, ok := r.f.courses[courseID]
	if !ok {
		return false, nil
	}
	return c.OwningTeacherID != nil && *c.OwningTeacherID == teacherID, nil
}

type fakeSectionRepo struct{ f *fixture }

func (r *fakeSectionRepo) Create(_ context.Context, _ *gorm.DB, section *types.Section) (*types.Section, error) {
	r.f.sections[section.ID] = section
	return section, nil
}

func (r *fakeSectionRepo) GetByID(_ context.Context, _ *gorm.DB, sectionID uuid.UUID) (*types.Section, error) {
	s, ok := r.f.sections[sectionID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return s, nil
}

func (r *fakeSectionRepo) ListByCourseID(_ context.Context, _ *gorm.DB, courseID uuid.UUID) ([]*types.Section, error) {
	var out []*types.Section
	for _, s := range r.f.sections {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSectionRepo) ListForTeacher(_ context.Context, _ *gorm.DB, teacherID uuid.UUID) ([]*types.Section, error) {
	var out []*types.Section
	for _, s := range r.f.sections {
		owned, _ := r.OwnedBy(context.Background(), nil, s.ID, teacherID)
		if owned {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSectionRepo) ListForStudent(_ context.Context, _ *gorm.DB, studentID uuid.UUID) ([]*types.Section, error) {
	seen := map[uuid.UUID]bool{}
	var out []*types.Section
	for _, e := range r.f.enrollments {
		if e.StudentID != studentID {
			continue
		}
		for _, s := range r.f.sections {
			match := (e.SectionID != nil && *e.SectionID == s.ID) ||
				(e.CourseID != nil && *e.CourseID == s.CourseID)
			if match && !seen[s.ID] {
				seen[s.ID] = true
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (r *fakeSectionRepo) OwnedBy(_ context.Context, _ *gorm.DB, sectionID, teacherID uuid.UUID) (bool, error) {
	s, ok := r.f.sections[sectionID]
	if !ok {
		return false, nil
	}
	if s.DelegatedTeacherID != nil && *s.DelegatedTeacherID == teacherID {
		return true, nil
	}
	c, ok := r.f.courses[s.CourseID]
	if !ok {
		return false, nil
	}
	return c.OwningTeacherID != nil && *c.OwningTeacherID == teacherID, nil
}

func (r *fakeSectionRepo) SetDelegatedTeacher(_ context.Context, _ *gorm.DB, sectionID, teacherID uuid.UUID) error {
	s, ok := r.f.sections[sectionID]
	if !ok {
		return pkgerrors.ErrNotFound
	}
	tid := teacherID
	s.DelegatedTeacherID = &tid
	return nil
}

type fakeEnrollmentRepo struct{ f *fixture }

func (r *fakeEnrollmentRepo) FindResolvingToSection(_ context.Context, _ *gorm.DB, studentID, sectionID, courseID uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	for _, e := range r.f.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if e.Malformed() ||
			(e.SectionID != nil && *e.SectionID == sectionID) ||
			(e.CourseID != nil && *e.CourseID == courseID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) FindResolvingToCourse(_ context.Context, _ *gorm.DB, studentID, courseID uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	for _, e := range r.f.enrollments {
		if e.StudentID != studentID {
			continue
		}
		inCourse := e.SectionID != nil && !e.Malformed()
		if inCourse {
			s, ok := r.f.sections[*e.SectionID]
			inCourse = ok && s.CourseID == courseID
		}
		if e.Malformed() ||
			(e.CourseID != nil && *e.CourseID == courseID) ||
			inCourse {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) CreateClaimingSeat(_ context.Context, _ *gorm.DB, enrollment *types.Enrollment) error {
	s, ok := r.f.sections[*enrollment.SectionID]
	if !ok {
		return pkgerrors.ErrNotFound
	}
	if s.MemberCount >= s.Capacity {
		return pkgerrors.ErrCapacityExceeded
	}
	s.MemberCount++
	r.f.enrollments = append(r.f.enrollments, enrollment)
	return nil
}

func (r *fakeEnrollmentRepo) DeleteReleasingSeat(_ context.Context, _ *gorm.DB, studentID, sectionID uuid.UUID) error {
	for i, e := range r.f.enrollments {
		if e.StudentID == studentID && e.SectionID != nil && *e.SectionID == sectionID {
			r.f.enrollments = append(r.f.enrollments[:i], r.f.enrollments[i+1:]...)
			if s, ok := r.f.sections[sectionID]; ok && s.MemberCount > 0 {
				s.MemberCount--
			}
			return nil
		}
	}
	return pkgerrors.ErrNotFound
}

type fakeMaterialRepo struct{ f *fixture }

func (r *fakeMaterialRepo) Create(_ context.Context, _ *gorm.DB, material *types.Material) (*types.Material, error) {
	r.f.materials[material.ID] = material
	return material, nil
}

func (r *fakeMaterialRepo) GetByID(_ context.Context, _ *gorm.DB, materialID uuid.UUID) (*types.Material, error) {
	m, ok := r.f.materials[materialID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMaterialRepo) ListBySectionID(_ context.Context, _ *gorm.DB, sectionID uuid.UUID) ([]*types.Material, error) {
	var out []*types.Material
	for _, m := range r.f.materials {
		if m.SectionID == sectionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) Delete(_ context.Context, _ *gorm.DB, materialID uuid.UUID) error {
	if _, ok := r.f.materials[materialID]; !ok {
		return pkgerrors.ErrNotFound
	}
	delete(r.f.materials, materialID)
	return nil
}

type fakeAssignmentRepo struct{ f *fixture }

func (r *fakeAssignmentRepo) Create(_ context.Context, _ *gorm.DB, assignment *types.Assignment) (*types.Assignment, error) {
	r.f.assignments[assignment.ID] = assignment
	return assignment, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, _ *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error) {
	a, ok := r.f.assignments[assignmentID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) ListBySectionID(_ context.Context, _ *gorm.DB, sectionID uuid.UUID) ([]*types.Assignment, error) {
	var out []*types.Assignment
	for _, a := range r.f.assignments {
		if a.SectionID == sectionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, _ *gorm.DB, assignmentID uuid.UUID) error {
	if _, ok := r.f.assignments[assignmentID]; !ok {
		return pkgerrors.ErrNotFound
	}
	delete(r.f.assignments, assignmentID)
	return nil
}

type fakeSubmissionRepo struct{ f *fixture }

func (r *fakeSubmissionRepo) Create(_ context.Context, _ *gorm.DB, submission *types.Submission) (*types.Submission, error) {
	r.f.submissions[submission.ID] = submission
	return submission, nil
}

func (r *fakeSubmissionRepo) Save(_ context.Context, _ *gorm.DB, submission *types.Submission) error {
	r.f.submissions[submission.ID] = submission
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, _ *gorm.DB, submissionID uuid.UUID) (*types.Submission, error) {
	s, ok := r.f.submissions[submissionID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return s, nil
}

func (r *fakeSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, _ *gorm.DB, assignmentID, studentID uuid.UUID) (*types.Submission, error) {
	for _, s := range r.f.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (r *fakeSubmissionRepo) ListByAssignmentID(_ context.Context, _ *gorm.DB, assignmentID uuid.UUID) ([]*types.Submission, error) {
	var out []*types.Submission
	for _, s := range r.f.submissions {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRoomRepo struct{ f *fixture }

func (r *fakeRoomRepo) GetOrCreate(_ context.Context, _ *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error) {
	if room, ok := r.f.rooms[sectionID]; ok {
		return room, nil
	}
	room := &types.DiscussionRoom{ID: uuid.New(), SectionID: sectionID}
	r.f.rooms[sectionID] = room
	return room, nil
}

func (r *fakeRoomRepo) GetBySectionID(_ context.Context, _ *gorm.DB, sectionID uuid.UUID) (*types.DiscussionRoom, error) {
	room, ok := r.f.rooms[sectionID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return room, nil
}

type fakeChatStore struct {
	messages map[uuid.UUID][]redisclient.ChatMessage
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{messages: map[uuid.UUID][]redisclient.ChatMessage{}}
}

func (s *fakeChatStore) Append(_ context.Context, roomID uuid.UUID, msg redisclient.ChatMessage) error {
	s.messages[roomID] = append(s.messages[roomID], msg)
	return nil
}

func (s *fakeChatStore) List(_ context.Context, roomID uuid.UUID, limit int64) ([]redisclient.ChatMessage, error) {
	msgs := s.messages[roomID]
	if int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	return msgs, nil
}

func (s *fakeChatStore) Close() error { return nil }

type fakeBucket struct {
	objects    map[string][]byte
	replaced   []string
	failDelete bool
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (b *fakeBucket) UploadFile(_ context.Context, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, key string) error {
	if b.failDelete {
		return errFakeBucketDown
	}
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) ReplaceFile(_ context.Context, key string, newFile io.Reader) error {
	b.replaced = append(b.replaced, key)
	return b.UploadFile(context.Background(), key, newFile)
}

func (b *fakeBucket) GetPublicURL(key string) string { return "https://cdn.test/" + key }

var errFakeBucketDown = errors.New("bucket unavailable")

func fileOf(content string) io.Reader { return bytes.NewBufferString(content) }
