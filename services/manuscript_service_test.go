package services_test

import (
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadManuscript brings a project of student to the manuscript gate and
// uploads the first manuscript.
func (f *fixture) uploadManuscript(student *models.User, s staff) (*models.Project, *models.ManuscriptReview) {
	f.t.Helper()
	p := f.submit(student, "AI Tutor")
	f.approveTitle(p.ID, s)
	f.passDefense(models.DefenseTitle, p.ID, student, s)
	f.passDefense(models.DefenseFinal, p.ID, student, s)
	review, err := f.manuscripts.Upload(f.ctx, p.ID, student.ID, pdf("manuscript.pdf"))
	require.NoError(f.t, err)
	return p, review
}

func TestManuscriptLockedUntilFinalDefense(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	f.approveTitle(p.ID, s)
	f.passDefense(models.DefenseTitle, p.ID, student, s)

	_, err := f.manuscripts.Upload(f.ctx, p.ID, student.ID, pdf("manuscript.pdf"))

	var gerr *models.GateLockedError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, models.GateFinalDefense, gerr.Predecessor)
}

func TestManuscriptUploadOnce(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p, review := f.uploadManuscript(student, s)

	assert.Equal(t, models.ManuscriptPending, review.Status)
	assert.Contains(t, f.titles(s.grammarian.ID), "New Manuscript for Review")

	_, err := f.manuscripts.Upload(f.ctx, p.ID, student.ID, pdf("again.pdf"))
	var serr *models.StateError
	assert.ErrorAs(t, err, &serr)
}

// Replacing the manuscript restarts the review from every status.
func TestManuscriptEditResetsReview(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture, projectID uint, s staff)
	}{
		{
			name: "under review",
			setup: func(f *fixture, projectID uint, s staff) {
				_, err := f.manuscripts.Review(f.ctx, projectID, s.grammarian.ID, models.ReviewStart, "", nil)
				require.NoError(f.t, err)
			},
		},
		{
			name: "approved",
			setup: func(f *fixture, projectID uint, s staff) {
				_, err := f.manuscripts.Review(f.ctx, projectID, s.grammarian.ID, models.ReviewApprove, "clean", nil)
				require.NoError(f.t, err)
			},
		},
		{
			name: "rejected with reviewed copy",
			setup: func(f *fixture, projectID uint, s staff) {
				reviewed := pdf("marked.pdf")
				_, err := f.manuscripts.Review(f.ctx, projectID, s.grammarian.ID, models.ReviewReject, "fix tenses", &reviewed)
				require.NoError(f.t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.staff()
			student := f.student("G-1")
			p, first := f.uploadManuscript(student, s)
			tt.setup(f, p.ID, s)

			before, err := f.manuscripts.Get(f.ctx, p.ID, student.ID)
			require.NoError(t, err)

			review, err := f.manuscripts.Edit(f.ctx, p.ID, student.ID, pdf("manuscript-v2.pdf"))
			require.NoError(t, err)

			assert.Equal(t, models.ManuscriptPending, review.Status)
			assert.Nil(t, review.ReviewerNotes)
			assert.Nil(t, review.ReviewedDocumentRef)
			assert.Nil(t, review.ReviewedBy)
			assert.Nil(t, review.ReviewedAt)
			assert.Equal(t, "manuscript-v2.pdf", review.FileName)
			assert.True(t, f.exists(review.DocumentRef))
			assert.False(t, f.exists(first.DocumentRef))
			if before.ReviewedDocumentRef != nil {
				assert.False(t, f.exists(*before.ReviewedDocumentRef))
			}
		})
	}
}

func TestManuscriptGroupEditAndCancel(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	a := f.student("G-1")
	b := f.student("G-1")
	p, _ := f.uploadManuscript(a, s)

	review, err := f.manuscripts.Edit(f.ctx, p.ID, b.ID, pdf("by-b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, review.SubmittedBy)

	err = f.manuscripts.Cancel(f.ctx, p.ID, b.ID)
	var perr *models.PolicyError
	require.ErrorAs(t, err, &perr)

	require.NoError(t, f.manuscripts.Cancel(f.ctx, p.ID, a.ID))
	assert.False(t, f.exists(review.DocumentRef))

	_, err = f.manuscripts.Get(f.ctx, p.ID, a.ID)
	var nerr *models.NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

func TestManuscriptReviewTransitions(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p, _ := f.uploadManuscript(student, s)

	var perr *models.PolicyError
	_, err := f.manuscripts.Review(f.ctx, p.ID, s.adviser.ID, models.ReviewStart, "", nil)
	require.ErrorAs(t, err, &perr)

	var verr *models.ValidationError
	_, err = f.manuscripts.Review(f.ctx, p.ID, s.grammarian.ID, "skim", "", nil)
	require.ErrorAs(t, err, &verr)

	review, err := f.manuscripts.Review(f.ctx, p.ID, s.grammarian.ID, models.ReviewStart, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ManuscriptUnderReview, review.Status)
	assert.Contains(t, f.titles(student.ID), "Manuscript Under Review")

	queue, err := f.manuscripts.Queue(f.ctx, s.grammarian.ID)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	var serr *models.StateError
	_, err = f.manuscripts.Review(f.ctx, p.ID, s.grammarian.ID, models.ReviewStart, "", nil)
	require.ErrorAs(t, err, &serr)

	reviewed := pdf("marked.pdf")
	review, err = f.manuscripts.Review(f.ctx, p.ID, s.grammarian.ID, models.ReviewApprove, "minor fixes applied", &reviewed)
	require.NoError(t, err)
	assert.Equal(t, models.ManuscriptApproved, review.Status)
	require.NotNil(t, review.ReviewerNotes)
	assert.Equal(t, "minor fixes applied", *review.ReviewerNotes)
	require.NotNil(t, review.ReviewedDocumentRef)
	assert.True(t, f.exists(*review.ReviewedDocumentRef))
	require.NotNil(t, review.ReviewedAt)
	assert.Equal(t, f.now, *review.ReviewedAt)

	_, err = f.manuscripts.Review(f.ctx, p.ID, s.grammarian.ID, models.ReviewReject, "", nil)
	assert.ErrorAs(t, err, &serr)

	queue, err = f.manuscripts.Queue(f.ctx, s.grammarian.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)

	progress, err := f.gates.Progress(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, progress.Percent)
}

func TestManuscriptFrozenAfterFinalSubmission(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	mate := f.student("G-1")
	p := f.throughManuscript(student, s)
	_, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)

	var serr *models.StateError
	_, err = f.manuscripts.Edit(f.ctx, p.ID, mate.ID, pdf("late.pdf"))
	assert.ErrorAs(t, err, &serr)
	err = f.manuscripts.Cancel(f.ctx, p.ID, student.ID)
	assert.ErrorAs(t, err, &serr)

	review, err := f.manuscripts.Get(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ManuscriptApproved, review.Status)

	progress, err := f.gates.Progress(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)
}
