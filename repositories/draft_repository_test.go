package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDraftRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "drafts.db")
	repo, err := OpenDraftRepository(path)
	require.NoError(t, err)

	_, err = repo.Get(1, 10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	draft := models.NewDraftDocument(1, 10)
	draft.CurrentStep = 3
	draft.Merge(map[string]string{"scope": "Grade 7"})
	draft.UpdatedAt = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(draft))
	require.NoError(t, repo.Save(models.NewDraftDocument(1, 11)))
	require.NoError(t, repo.Save(models.NewDraftDocument(12, 10)))

	got, err := repo.Get(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStep)
	assert.Equal(t, "Grade 7", got.Fields["scope"])
	assert.True(t, draft.UpdatedAt.Equal(got.UpdatedAt))

	// User 1 must not pick up user 12's drafts through the key prefix.
	list, err := repo.ListByUser(1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(1, 10))
	_, err = repo.Get(1, 10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, repo.Close())

	reopened, err := OpenDraftRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	list, err = reopened.ListByUser(12)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
