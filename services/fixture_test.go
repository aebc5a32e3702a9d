package services_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"capstone-tracker/models"
	"capstone-tracker/repositories"
	"capstone-tracker/repositories/memory"
	"capstone-tracker/services"
	"capstone-tracker/storage"

	"github.com/stretchr/testify/require"
)

const pdfBody = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type stubRenderer struct {
	fields map[string]string
	format models.DraftFormat
}

func (r *stubRenderer) RenderProjectLetter(ctx context.Context, fields map[string]string) ([]byte, error) {
	r.fields = fields
	return []byte("%PDF-letter"), nil
}

func (r *stubRenderer) RenderResearchDocumentation(ctx context.Context, fields map[string]string, format models.DraftFormat) ([]byte, error) {
	r.fields, r.format = fields, format
	return []byte("doc:" + string(format)), nil
}

// fixture wires every service to one in-memory store and a fake clock.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	files    *storage.LocalStore
	drafts   repositories.DraftRepository
	renderer *stubRenderer
	now      time.Time
	users    int

	groups        *services.GroupPolicy
	auth          services.AuthService
	projects      services.ProjectService
	approvals     services.ApprovalService
	gates         services.GateService
	defenses      services.DefenseService
	manuscripts   services.ManuscriptService
	capstones     services.CapstoneService
	bookmarks     services.BookmarkService
	notifications services.NotificationService
	draftsSvc     services.DraftService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	drafts, err := repositories.OpenDraftRepository(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { drafts.Close() })

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    memory.NewStore(),
		files:    files,
		drafts:   drafts,
		renderer: &stubRenderer{},
		now:      time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	emitter := services.NewEmitter(services.NewStoreNotifier(f.store))

	f.groups = services.NewGroupPolicy(f.store)
	f.auth = services.NewAuthService(f.store)
	f.projects = services.NewProjectService(f.store, f.groups, emitter, f.renderer)
	f.approvals = services.NewApprovalService(f.store, f.groups, emitter, clock)
	f.gates = services.NewGateService(f.store, f.groups)
	f.defenses = services.NewDefenseService(f.store, files, f.groups, emitter, clock, storage.DefaultMaxUpload)
	f.manuscripts = services.NewManuscriptService(f.store, files, f.groups, emitter, clock, storage.DefaultMaxUpload)
	f.capstones = services.NewCapstoneService(f.store, files, f.groups, emitter, clock)
	f.bookmarks = services.NewBookmarkService(f.store)
	f.notifications = services.NewNotificationService(f.store)
	f.draftsSvc = services.NewDraftService(f.store, drafts, f.groups, f.renderer, clock)
	return f
}

func (f *fixture) user(role models.UserRole, group, yearSection string) *models.User {
	f.t.Helper()
	f.users++
	u := &models.User{
		Username:    fmt.Sprintf("%s%d", role, f.users),
		Email:       fmt.Sprintf("%s%d@ccs.test", role, f.users),
		Password:    "x",
		Role:        role,
		FirstName:   "Test",
		LastName:    fmt.Sprintf("No%d", f.users),
		GroupCode:   group,
		YearSection: yearSection,
	}
	require.NoError(f.t, f.store.Users().Create(u))
	return u
}

func (f *fixture) student(group string) *models.User {
	return f.user(models.RoleStudent, group, "4A")
}

func pdf(name string) storage.Upload {
	return storage.Upload{
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(pdfBody)),
		Body:        strings.NewReader(pdfBody),
	}
}

func projectFields(title string) models.ProjectFields {
	return models.ProjectFields{
		Title:       title,
		Beneficiary: "Barangay San Isidro",
		FocalPerson: "Maria Santos",
		FocalGender: "female",
		Position:    "Barangay Captain",
		Address:     "San Isidro, Nueva Ecija",
		Proponents:  []string{"Juan Dela Cruz"},
	}
}

// staff holds the people who decide on a project.
type staff struct {
	dean       *models.User
	adviser    *models.User
	professor  *models.User
	grammarian *models.User
	admin      *models.User
}

func (f *fixture) staff() staff {
	return staff{
		dean:       f.user(models.RoleDean, "", ""),
		adviser:    f.user(models.RoleFaculty, "", ""),
		professor:  f.user(models.RoleFaculty, "", ""),
		grammarian: f.user(models.RoleGrammarian, "", ""),
		admin:      f.user(models.RoleAdmin, "", ""),
	}
}

func (f *fixture) submit(student *models.User, title string) *models.Project {
	f.t.Helper()
	p, err := f.projects.Submit(f.ctx, student.ID, projectFields(title))
	require.NoError(f.t, err)
	return p
}

// approveTitle assigns the adviser and runs the whole approval ladder.
func (f *fixture) approveTitle(projectID uint, s staff) {
	f.t.Helper()
	_, err := f.projects.AssignAdviser(f.ctx, projectID, s.dean.ID, s.adviser.ID)
	require.NoError(f.t, err)
	_, err = f.approvals.RecordDecision(f.ctx, projectID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "")
	require.NoError(f.t, err)
	_, err = f.approvals.RecordDecision(f.ctx, projectID, s.professor.ID, models.StageAdviser, models.ApprovalApproved, "")
	require.NoError(f.t, err)
	_, err = f.approvals.RecordDecision(f.ctx, projectID, s.dean.ID, models.StageDean, models.ApprovalApproved, "")
	require.NoError(f.t, err)
}

func (f *fixture) passDefense(kind models.DefenseKind, projectID uint, student *models.User, s staff) {
	f.t.Helper()
	_, err := f.defenses.Submit(f.ctx, kind, projectID, student.ID, pdf(string(kind)+".pdf"))
	require.NoError(f.t, err)
	_, err = f.defenses.Schedule(f.ctx, kind, projectID, s.adviser.ID, f.now.Add(72*time.Hour))
	require.NoError(f.t, err)
	_, err = f.defenses.Decide(f.ctx, kind, projectID, s.adviser.ID, models.ApprovalApproved, "well defended")
	require.NoError(f.t, err)
}

func (f *fixture) passManuscript(projectID uint, student *models.User, s staff) {
	f.t.Helper()
	_, err := f.manuscripts.Upload(f.ctx, projectID, student.ID, pdf("manuscript.pdf"))
	require.NoError(f.t, err)
	_, err = f.manuscripts.Review(f.ctx, projectID, s.grammarian.ID, models.ReviewApprove, "clean", nil)
	require.NoError(f.t, err)
}

// throughManuscript brings a new project of student to the final submission gate.
func (f *fixture) throughManuscript(student *models.User, s staff) *models.Project {
	f.t.Helper()
	p := f.submit(student, "AI Tutor")
	f.approveTitle(p.ID, s)
	f.passDefense(models.DefenseTitle, p.ID, student, s)
	f.passDefense(models.DefenseFinal, p.ID, student, s)
	f.passManuscript(p.ID, student, s)
	return p
}

func (f *fixture) exists(ref string) bool {
	f.t.Helper()
	ok, err := f.files.Exists(f.ctx, ref)
	require.NoError(f.t, err)
	return ok
}

func (f *fixture) titles(userID uint) []string {
	f.t.Helper()
	list, err := f.notifications.List(f.ctx, userID, false)
	require.NoError(f.t, err)
	titles := make([]string, 0, len(list))
	for _, n := range list {
		titles = append(titles, n.Title)
	}
	return titles
}

func capstoneInput(projectID uint) models.CapstoneInput {
	return models.CapstoneInput{
		ProjectID: projectID,
		Title:     "AI Tutor: An Adaptive Learning Assistant",
		Authors: []models.Author{
			{FirstName: "Juan", MiddleName: "Reyes", LastName: "Dela Cruz"},
			{FirstName: "Ana", LastName: "Lopez", Suffix: "Jr."},
		},
		Year:     2026,
		Abstract: "An adaptive tutor for first-year programming.",
		Keywords: "tutoring, adaptive learning",
	}
}
