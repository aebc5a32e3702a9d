package services

import (
	"context"
	"fmt"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
)

// DraftService keeps the research-documentation wizard state per user and
// lineage.
type DraftService interface {
	Get(ctx context.Context, projectID, actorID uint) (*models.DraftDocument, error)
	Update(ctx context.Context, projectID, actorID uint, req models.DraftUpdateRequest) (*models.DraftDocument, error)
	Export(ctx context.Context, projectID, actorID uint, format models.DraftFormat) ([]byte, error)
	Discard(ctx context.Context, projectID, actorID uint) error
	List(ctx context.Context, actorID uint) ([]models.DraftDocument, error)
}

type draftService struct {
	store    repositories.Store
	drafts   repositories.DraftRepository
	groups   *GroupPolicy
	renderer DocumentRenderer
	now      Clock
}

func NewDraftService(store repositories.Store, drafts repositories.DraftRepository, groups *GroupPolicy, renderer DocumentRenderer, clock Clock) DraftService {
	if clock == nil {
		clock = systemClock
	}
	return &draftService{store: store, drafts: drafts, groups: groups, renderer: renderer, now: clock}
}

func (s *draftService) open(ctx context.Context, projectID, actorID uint) (*models.User, *models.Project, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireRole(actor, "write research documentation", models.RoleStudent); err != nil {
		return nil, nil, err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, nil, err
	}
	return actor, active, nil
}

// load returns the stored draft or a fresh one at the first step.
func (s *draftService) load(userID, lineageID uint) (*models.DraftDocument, error) {
	draft, err := s.drafts.Get(userID, lineageID)
	if isNotFound(err) {
		return models.NewDraftDocument(userID, lineageID), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load draft")
	}
	return draft, nil
}

func (s *draftService) Get(ctx context.Context, projectID, actorID uint) (*models.DraftDocument, error) {
	actor, active, err := s.open(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	return s.load(actor.ID, active.LineageID)
}

func (s *draftService) Update(ctx context.Context, projectID, actorID uint, req models.DraftUpdateRequest) (*models.DraftDocument, error) {
	if req.Step < models.DraftFirstStep || req.Step > models.DraftLastStep {
		return nil, models.NewValidationError("invalid wizard step",
			map[string]string{"step": fmt.Sprintf("step must be between %d and %d", models.DraftFirstStep, models.DraftLastStep)})
	}
	actor, active, err := s.open(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(draftLockKey(actor.ID, active.LineageID))
	defer unlock()

	draft, err := s.load(actor.ID, active.LineageID)
	if err != nil {
		return nil, err
	}
	draft.Merge(req.Fields)
	draft.CurrentStep = req.Step
	draft.UpdatedAt = s.now()
	if err := s.drafts.Save(draft); err != nil {
		return nil, errors.Wrap(err, "save draft")
	}
	return draft, nil
}

// Export renders the draft. Project fields fill in whatever the draft leaves
// empty.
func (s *draftService) Export(ctx context.Context, projectID, actorID uint, format models.DraftFormat) ([]byte, error) {
	if format == "" {
		format = models.DraftFormatPDF
	}
	if format != models.DraftFormatPDF && format != models.DraftFormatDOCX {
		return nil, models.NewValidationError("invalid export format", map[string]string{"format": "must be one of pdf docx"})
	}
	actor, active, err := s.open(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	draft, err := s.load(actor.ID, active.LineageID)
	if err != nil {
		return nil, err
	}

	fields := active.LetterFields()
	for k, v := range draft.Fields {
		fields[k] = v
	}
	doc, err := s.renderer.RenderResearchDocumentation(ctx, fields, format)
	return doc, errors.Wrap(err, "render research documentation")
}

func (s *draftService) Discard(ctx context.Context, projectID, actorID uint) error {
	actor, active, err := s.open(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	return errors.Wrap(s.drafts.Delete(actor.ID, active.LineageID), "delete draft")
}

func (s *draftService) List(ctx context.Context, actorID uint) ([]models.DraftDocument, error) {
	actor, err := loadActor(s.store.WithContext(ctx), actorID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.drafts.ListByUser(actor.ID)
	return drafts, errors.Wrap(err, "list drafts")
}
