package services_test

import (
	"sync"
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCount(t *testing.T, versions []models.Project) int {
	t.Helper()
	n := 0
	for _, v := range versions {
		if !v.Archived {
			n++
		}
	}
	return n
}

func TestSubmitCreatesFirstVersion(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")

	p := f.submit(student, "  AI Tutor ")

	assert.Equal(t, 1, p.Version)
	assert.Equal(t, p.ID, p.LineageID)
	assert.Equal(t, "AI Tutor", p.Title)
	require.NotNil(t, p.Approval)
	assert.Equal(t, models.ApprovalPending, p.Approval.Status(models.StageFaculty))
	assert.Contains(t, f.titles(student.ID), "Research Submitted")
	assert.Contains(t, f.titles(s.dean.ID), "New Research Submission")
}

func TestSubmitValidatesFields(t *testing.T) {
	f := newFixture(t)
	student := f.student("G-1")

	fields := projectFields("AI Tutor")
	fields.Proponents = []string{"a", "b", "c", "d", "e"}
	fields.FocalGender = "unknown"
	fields.Beneficiary = ""

	_, err := f.projects.Submit(f.ctx, student.ID, fields)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "proponents")
	assert.Contains(t, verr.Fields, "focal_gender")
	assert.Contains(t, verr.Fields, "beneficiary")
}

func TestSubmitRequiresStudent(t *testing.T) {
	f := newFixture(t)
	s := f.staff()

	_, err := f.projects.Submit(f.ctx, s.adviser.ID, projectFields("AI Tutor"))

	var perr *models.PolicyError
	assert.ErrorAs(t, err, &perr)
}

func TestSubmitEnforcesGroupCaps(t *testing.T) {
	f := newFixture(t)
	a := f.student("G-1")
	b := f.student("G-1")

	f.submit(a, "One")
	f.submit(b, "Two")

	_, err := f.projects.Submit(f.ctx, a.ID, projectFields("One"))
	var perr *models.PolicyError
	require.ErrorAs(t, err, &perr, "duplicate title within the group")

	f.submit(a, "Three")
	_, err = f.projects.Submit(f.ctx, b.ID, projectFields("Four"))
	require.ErrorAs(t, err, &perr, "fourth active lineage")

	other := f.student("G-2")
	f.submit(other, "One")
}

func TestSubmitBlockedAfterFullApproval(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	f.approveTitle(p.ID, s)

	_, err := f.projects.Submit(f.ctx, student.ID, projectFields("Another idea"))

	var perr *models.PolicyError
	assert.ErrorAs(t, err, &perr)
}

// Versions 2 to 5 are created by edits; the next edit hits the cap and the
// lineage stays at version 5.
func TestCreateNewVersionCap(t *testing.T) {
	f := newFixture(t)
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")

	current := p
	for v := 2; v <= models.MaxProjectVersions; v++ {
		next, err := f.projects.CreateNewVersion(f.ctx, current.ID, student.ID, projectFields("AI Tutor"))
		require.NoError(t, err)
		assert.Equal(t, v, next.Version)
		assert.Equal(t, p.LineageID, next.LineageID)
		current = next
	}

	_, err := f.projects.CreateNewVersion(f.ctx, current.ID, student.ID, projectFields("AI Tutor"))
	var lerr *models.LimitError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, models.MaxProjectVersions, lerr.Limit)

	versions, err := f.projects.ListLineage(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Len(t, versions, models.MaxProjectVersions)
	assert.Equal(t, 1, activeCount(t, versions))
	assert.Equal(t, models.MaxProjectVersions, versions[len(versions)-1].Version)
	assert.False(t, versions[len(versions)-1].Archived)
}

func TestCreateNewVersionRejectsArchivedTarget(t *testing.T) {
	f := newFixture(t)
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	_, err := f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("AI Tutor v2"))
	require.NoError(t, err)

	_, err = f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("AI Tutor v3"))

	var serr *models.StateError
	assert.ErrorAs(t, err, &serr)
}

func TestCreateNewVersionCarriesApprovalForward(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	_, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "good")
	require.NoError(t, err)
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.professor.ID, models.StageAdviser, models.ApprovalRejected, "narrow the scope")
	require.NoError(t, err)

	next, err := f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("AI Tutor for Grade 7"))
	require.NoError(t, err)

	require.NotNil(t, next.Approval)
	assert.Equal(t, models.ApprovalApproved, next.Approval.FacultyApproval)
	assert.Equal(t, models.ApprovalRejected, next.Approval.AdviserApproval)
	assert.Equal(t, "narrow the scope", next.Approval.AdviserComments)
	assert.Nil(t, next.Approval.AdviserDecidedAt)
	require.NotNil(t, next.AdviserID)
	assert.Equal(t, s.adviser.ID, *next.AdviserID)

	// The carried rejection can be decided again on the new version.
	_, err = f.approvals.RecordDecision(f.ctx, next.ID, s.professor.ID, models.StageAdviser, models.ApprovalApproved, "")
	assert.NoError(t, err)
}

func TestCreateNewVersionBlockedWhenFullyApproved(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	f.approveTitle(p.ID, s)

	_, err := f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("AI Tutor"))

	var perr *models.PolicyError
	assert.ErrorAs(t, err, &perr)
}

func TestConcurrentEditsKeepOneActiveVersion(t *testing.T) {
	f := newFixture(t)
	a := f.student("G-1")
	b := f.student("G-1")
	p := f.submit(a, "AI Tutor")

	const editors = 8
	var wg sync.WaitGroup
	errs := make([]error, editors)
	for i := 0; i < editors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := a
			if i%2 == 1 {
				actor = b
			}
			_, errs[i] = f.projects.CreateNewVersion(f.ctx, p.ID, actor.ID, projectFields("AI Tutor"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var serr *models.StateError
		assert.ErrorAs(t, err, &serr)
	}
	assert.Equal(t, 1, succeeded)

	versions, err := f.projects.ListLineage(f.ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, 1, activeCount(t, versions))
}

func TestGroupmateMayEditAndOutsiderGetsNotFound(t *testing.T) {
	f := newFixture(t)
	a := f.student("G-1")
	b := f.student("G-1")
	outsider := f.student("G-2")
	p := f.submit(a, "AI Tutor")

	next, err := f.projects.CreateNewVersion(f.ctx, p.ID, b.ID, projectFields("AI Tutor"))
	require.NoError(t, err)
	assert.Equal(t, b.ID, next.SubmittedBy)

	var nerr *models.NotFoundError
	_, err = f.projects.Get(f.ctx, p.ID, outsider.ID)
	assert.ErrorAs(t, err, &nerr)
	_, err = f.projects.CreateNewVersion(f.ctx, next.ID, outsider.ID, projectFields("Hijack"))
	assert.ErrorAs(t, err, &nerr)
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")

	p := f.submit(student, "Short lived")
	_, err := f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("Short lived"))
	require.NoError(t, err)
	require.NoError(t, f.projects.Delete(f.ctx, p.ID, student.ID))
	_, err = f.projects.Get(f.ctx, p.ID, student.ID)
	var nerr *models.NotFoundError
	assert.ErrorAs(t, err, &nerr)

	kept := f.submit(student, "AI Tutor")
	_, err = f.projects.AssignAdviser(f.ctx, kept.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)
	err = f.projects.Delete(f.ctx, kept.ID, student.ID)
	var perr *models.PolicyError
	assert.ErrorAs(t, err, &perr)
}

func TestListActiveByRole(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	a := f.student("G-1")
	b := f.student("G-1")
	other := f.student("G-2")
	p1 := f.submit(a, "One")
	f.submit(b, "Two")
	f.submit(other, "Three")
	_, err := f.projects.AssignAdviser(f.ctx, p1.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)

	mine, err := f.projects.ListActive(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	advisees, err := f.projects.ListActive(f.ctx, s.adviser.ID)
	require.NoError(t, err)
	require.Len(t, advisees, 1)
	assert.Equal(t, "One", advisees[0].Title)

	all, err := f.projects.ListActive(f.ctx, s.dean.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListLineageByTitle(t *testing.T) {
	f := newFixture(t)
	a := f.student("G-1")
	b := f.student("G-1")
	p := f.submit(a, "AI Tutor")
	_, err := f.projects.CreateNewVersion(f.ctx, p.ID, a.ID, projectFields("AI Tutor Plus"))
	require.NoError(t, err)

	versions, err := f.projects.ListLineageByTitle(f.ctx, b.ID, "AI Tutor")
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	_, err = f.projects.ListLineageByTitle(f.ctx, f.student("G-2").ID, "AI Tutor")
	var nerr *models.NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

func TestAssignAdviserRequiresFaculty(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")

	_, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.grammarian.ID)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.projects.AssignAdviser(f.ctx, p.ID, s.adviser.ID, s.professor.ID)
	var perr *models.PolicyError
	assert.ErrorAs(t, err, &perr)

	assigned, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)
	assert.True(t, assigned.HasAdviser())
	assert.Contains(t, f.titles(s.adviser.ID), "New Advisee Project")
	assert.Contains(t, f.titles(student.ID), "Adviser Assigned")
}

func TestRenderLetterUsesActiveFields(t *testing.T) {
	f := newFixture(t)
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")

	doc, err := f.projects.RenderLetter(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-letter", string(doc))
	assert.Equal(t, "AI Tutor", f.renderer.fields["title"])
	assert.Equal(t, "Juan Dela Cruz", f.renderer.fields["proponent_1"])
}
