package services_test

import (
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDecisionEnforcesOrder(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")

	var seq *models.SequenceError

	_, err := f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "")
	require.ErrorAs(t, err, &seq, "faculty stage without an assigned adviser")

	_, err = f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)

	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.dean.ID, models.StageDean, models.ApprovalApproved, "")
	require.ErrorAs(t, err, &seq)
	assert.Equal(t, models.StageFaculty, seq.Requires, "the first unmet stage is reported")

	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.professor.ID, models.StageAdviser, models.ApprovalApproved, "")
	require.ErrorAs(t, err, &seq)
	assert.Equal(t, models.StageFaculty, seq.Requires)

	approval, err := f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "ok")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approval.FacultyApproval)
	assert.Equal(t, models.ApprovalPending, approval.DeanApproval)

	ok, err := f.approvals.IsFullyApproved(f.ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRejectedEarlierStageReopensLadder(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	_, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "")
	require.NoError(t, err)
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.professor.ID, models.StageAdviser, models.ApprovalApproved, "")
	require.NoError(t, err)

	v2, err := f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("AI Tutor"))
	require.NoError(t, err)

	approval, err := f.approvals.RecordDecision(f.ctx, v2.ID, s.adviser.ID, models.StageFaculty, models.ApprovalRejected, "scope changed")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, approval.AdviserApproval)
	assert.Equal(t, models.ApprovalPending, approval.DeanApproval)

	_, err = f.approvals.RecordDecision(f.ctx, v2.ID, s.dean.ID, models.StageDean, models.ApprovalApproved, "")
	var seq *models.SequenceError
	require.ErrorAs(t, err, &seq)
	assert.Equal(t, models.StageFaculty, seq.Requires)

	// The next version has to climb the whole ladder again.
	v3, err := f.projects.CreateNewVersion(f.ctx, v2.ID, student.ID, projectFields("AI Tutor"))
	require.NoError(t, err)
	_, err = f.approvals.RecordDecision(f.ctx, v3.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "")
	require.NoError(t, err)

	ok, err := f.approvals.IsFullyApproved(f.ctx, v3.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordDecisionRoles(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	_, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)

	var perr *models.PolicyError
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.professor.ID, models.StageFaculty, models.ApprovalApproved, "")
	assert.ErrorAs(t, err, &perr, "only the assigned adviser decides the first stage")
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, student.ID, models.StageFaculty, models.ApprovalApproved, "")
	assert.ErrorAs(t, err, &perr)
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageDean, models.ApprovalApproved, "")
	assert.ErrorAs(t, err, &perr)

	var verr *models.ValidationError
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalPending, "")
	assert.ErrorAs(t, err, &verr)
	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, "principal", models.ApprovalApproved, "")
	assert.ErrorAs(t, err, &verr)
}

func TestRecordDecisionOncePerVersion(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	_, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)

	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalRejected, "too broad")
	require.NoError(t, err)
	assert.Contains(t, f.titles(student.ID), "Research Rejected")

	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "")
	var serr *models.StateError
	assert.ErrorAs(t, err, &serr)
}

func TestRecordDecisionOnArchivedVersion(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	_, err := f.projects.AssignAdviser(f.ctx, p.ID, s.dean.ID, s.adviser.ID)
	require.NoError(t, err)
	_, err = f.projects.CreateNewVersion(f.ctx, p.ID, student.ID, projectFields("AI Tutor"))
	require.NoError(t, err)

	_, err = f.approvals.RecordDecision(f.ctx, p.ID, s.adviser.ID, models.StageFaculty, models.ApprovalApproved, "")

	var serr *models.StateError
	assert.ErrorAs(t, err, &serr)
}

func TestFullApprovalNotifies(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")

	f.approveTitle(p.ID, s)

	ok, err := f.approvals.IsFullyApproved(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, f.titles(student.ID), "Working Title Approved")
	assert.Contains(t, f.titles(s.dean.ID), "Research Awaiting Dean Approval")
}

func TestProgressAndGates(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")

	progress, err := f.gates.Progress(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Percent)
	require.Len(t, progress.Gates, len(models.Gates))
	assert.Equal(t, models.GatePending, progress.Gates[0].Status)
	assert.False(t, progress.Gates[0].Locked)
	assert.True(t, progress.Gates[1].Locked)

	err = f.gates.RequireGate(f.ctx, p.ID, student.ID, models.GateTitleDefense)
	var gerr *models.GateLockedError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, models.GateWorkingTitle, gerr.Predecessor)

	f.approveTitle(p.ID, s)
	require.NoError(t, f.gates.RequireGate(f.ctx, p.ID, student.ID, models.GateTitleDefense))

	progress, err = f.gates.Progress(f.ctx, p.ID, s.adviser.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, progress.Percent)
	assert.Equal(t, p.LineageID, progress.LineageID)
	assert.Equal(t, models.GateNotStarted, progress.Gates[1].Status)
}
