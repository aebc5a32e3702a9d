package services_test

import (
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The whole pipeline from working title to a verified repository entry.
func TestCapstoneHappyPath(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.throughManuscript(student, s)

	capstone, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)
	assert.Equal(t, models.CapstoneNonVerified, capstone.Status)
	assert.Equal(t, p.LineageID, capstone.LineageID)
	assert.Contains(t, f.titles(s.admin.ID), "New Research Submission")

	progress, err := f.gates.Progress(f.ctx, p.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)

	verified, err := f.capstones.Verify(f.ctx, capstone.ID, s.admin.ID, models.CapstoneVerified)
	require.NoError(t, err)
	assert.Equal(t, models.CapstoneVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)
	assert.Contains(t, f.titles(student.ID), "Research Verified")

	view, err := f.capstones.Get(f.ctx, capstone.ID, s.professor.ID)
	require.NoError(t, err)
	assert.Equal(t,
		"Dela Cruz, J. R., & Lopez, A., Jr. (2026). AI Tutor: An Adaptive Learning Assistant. CCS Research Repository.",
		view.Citation)
}

func TestCapstoneLockedBeforeManuscriptApproval(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.submit(student, "AI Tutor")
	f.approveTitle(p.ID, s)

	_, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))

	var gerr *models.GateLockedError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, models.GateFinalSubmission, gerr.Gate)
}

func TestCapstoneOnePerGroup(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	a := f.student("G-1")
	b := f.student("G-1")
	p := f.throughManuscript(a, s)

	first, err := f.capstones.Submit(f.ctx, a.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)

	input := capstoneInput(p.ID)
	input.Title = "AI Tutor, second copy"
	_, err = f.capstones.Submit(f.ctx, b.ID, input, pdf("final-b.pdf"))

	var perr *models.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.True(t, f.exists(first.DocumentRef))
}

func TestCapstoneValidation(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.throughManuscript(student, s)

	tests := []struct {
		name  string
		edit  func(in *models.CapstoneInput)
		field string
	}{
		{"future year", func(in *models.CapstoneInput) { in.Year = 2027 }, "year"},
		{"ancient year", func(in *models.CapstoneInput) { in.Year = 1899 }, "year"},
		{"no authors", func(in *models.CapstoneInput) { in.Authors = nil }, "authors"},
		{"missing abstract", func(in *models.CapstoneInput) { in.Abstract = "" }, "abstract"},
		{"too many authors", func(in *models.CapstoneInput) {
			in.Authors = make([]models.Author, models.MaxCapstoneAuthors+1)
			for i := range in.Authors {
				in.Authors[i] = models.Author{FirstName: "A", LastName: "B"}
			}
		}, "authors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := capstoneInput(p.ID)
			tt.edit(&input)

			_, err := f.capstones.Submit(f.ctx, student.ID, input, pdf("final.pdf"))

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCapstoneVerifyIsFinal(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	p := f.throughManuscript(student, s)
	capstone, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)

	var perr *models.PolicyError
	_, err = f.capstones.Verify(f.ctx, capstone.ID, s.dean.ID, models.CapstoneVerified)
	require.ErrorAs(t, err, &perr)

	var verr *models.ValidationError
	_, err = f.capstones.Verify(f.ctx, capstone.ID, s.admin.ID, models.CapstoneNonVerified)
	require.ErrorAs(t, err, &verr)

	_, err = f.capstones.Verify(f.ctx, capstone.ID, s.admin.ID, models.CapstoneRejected)
	require.NoError(t, err)
	assert.Contains(t, f.titles(student.ID), "Research Rejected")

	var serr *models.StateError
	_, err = f.capstones.Verify(f.ctx, capstone.ID, s.admin.ID, models.CapstoneVerified)
	assert.ErrorAs(t, err, &serr)
}

func TestCapstoneVisibility(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	mate := f.student("G-1")
	outsider := f.student("G-2")
	p := f.throughManuscript(student, s)
	capstone, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)

	_, err = f.capstones.Get(f.ctx, capstone.ID, mate.ID)
	require.NoError(t, err)
	_, err = f.capstones.Get(f.ctx, capstone.ID, s.admin.ID)
	require.NoError(t, err)
	var nerr *models.NotFoundError
	_, err = f.capstones.Get(f.ctx, capstone.ID, outsider.ID)
	require.ErrorAs(t, err, &nerr)

	items, total, err := f.capstones.List(f.ctx, outsider.ID, models.CapstoneListParams{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	var perr *models.PolicyError
	_, _, err = f.capstones.List(f.ctx, outsider.ID, models.CapstoneListParams{Status: models.CapstoneNonVerified})
	require.ErrorAs(t, err, &perr)

	items, total, err = f.capstones.List(f.ctx, s.admin.ID, models.CapstoneListParams{Status: models.CapstoneNonVerified})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.EqualValues(t, 1, total)

	_, err = f.capstones.Verify(f.ctx, capstone.ID, s.admin.ID, models.CapstoneVerified)
	require.NoError(t, err)

	items, total, err = f.capstones.List(f.ctx, outsider.ID, models.CapstoneListParams{Search: "adaptive", Year: 2026})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, total)
	assert.NotEmpty(t, items[0].Citation)

	items, _, err = f.capstones.List(f.ctx, outsider.ID, models.CapstoneListParams{Search: "blockchain"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBookmarks(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	reader := f.student("G-2")
	p := f.throughManuscript(student, s)
	capstone, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)

	var perr *models.PolicyError
	_, err = f.bookmarks.Add(f.ctx, capstone.ID, reader.ID)
	require.ErrorAs(t, err, &perr, "unverified research")

	_, err = f.capstones.Verify(f.ctx, capstone.ID, s.admin.ID, models.CapstoneVerified)
	require.NoError(t, err)

	bookmark, err := f.bookmarks.Add(f.ctx, capstone.ID, reader.ID)
	require.NoError(t, err)
	require.NotNil(t, bookmark.Capstone)
	assert.Equal(t, capstone.ID, bookmark.CapstoneID)

	_, err = f.bookmarks.Add(f.ctx, capstone.ID, reader.ID)
	require.ErrorAs(t, err, &perr, "duplicate bookmark")

	view, err := f.capstones.Get(f.ctx, capstone.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, view.Bookmarked)
	items, _, err := f.capstones.List(f.ctx, reader.ID, models.CapstoneListParams{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Bookmarked)

	list, err := f.bookmarks.List(f.ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, capstone.Title, list[0].Capstone.Title)

	require.NoError(t, f.bookmarks.Remove(f.ctx, capstone.ID, reader.ID))
	err = f.bookmarks.Remove(f.ctx, capstone.ID, reader.ID)
	assert.ErrorAs(t, err, &perr)

	var nerr *models.NotFoundError
	_, err = f.bookmarks.Add(f.ctx, 9999, reader.ID)
	assert.ErrorAs(t, err, &nerr)
}

func TestCapstoneCountsForItsLineageOnly(t *testing.T) {
	f := newFixture(t)
	s := f.staff()
	student := f.student("G-1")
	other := f.submit(student, "Quiz Bot")
	p := f.throughManuscript(student, s)
	_, err := f.capstones.Submit(f.ctx, student.ID, capstoneInput(p.ID), pdf("final.pdf"))
	require.NoError(t, err)

	progress, err := f.gates.Progress(f.ctx, other.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Percent)
	last := progress.Gates[len(progress.Gates)-1]
	assert.Equal(t, models.GateFinalSubmission, last.Gate)
	assert.Equal(t, models.GateNotStarted, last.Status)
	assert.True(t, last.Locked)
}
