package services

import (
	"context"
	"fmt"

	"capstone-tracker/models"
	"capstone-tracker/repositories"
	"capstone-tracker/storage"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ManuscriptService interface {
	Get(ctx context.Context, projectID, actorID uint) (*models.ManuscriptReview, error)
	Upload(ctx context.Context, projectID, actorID uint, upload storage.Upload) (*models.ManuscriptReview, error)
	Edit(ctx context.Context, projectID, actorID uint, upload storage.Upload) (*models.ManuscriptReview, error)
	Cancel(ctx context.Context, projectID, actorID uint) error
	Review(ctx context.Context, projectID, actorID uint, action models.ReviewAction, notes string, reviewed *storage.Upload) (*models.ManuscriptReview, error)
	Queue(ctx context.Context, actorID uint) ([]models.ManuscriptReview, error)
}

type manuscriptService struct {
	store     repositories.Store
	files     storage.FileStore
	groups    *GroupPolicy
	gates     *gateService
	emitter   *Emitter
	now       Clock
	maxUpload int64
}

func NewManuscriptService(store repositories.Store, files storage.FileStore, groups *GroupPolicy, emitter *Emitter, clock Clock, maxUpload int64) ManuscriptService {
	if clock == nil {
		clock = systemClock
	}
	if maxUpload <= 0 {
		maxUpload = storage.DefaultMaxUpload
	}
	return &manuscriptService{
		store:     store,
		files:     files,
		groups:    groups,
		gates:     &gateService{store: store, groups: groups},
		emitter:   emitter,
		now:       clock,
		maxUpload: maxUpload,
	}
}

// open resolves a student actor and checks the manuscript gate.
func (s *manuscriptService) open(store repositories.Store, projectID, actorID uint, action string) (*models.User, *models.Project, error) {
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireRole(actor, action, models.RoleStudent); err != nil {
		return nil, nil, err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, nil, err
	}
	if err := s.gates.require(store, actor, active, models.GateManuscriptReview); err != nil {
		return nil, nil, err
	}
	return actor, active, nil
}

// requireNoSubmission refuses changes to a manuscript once the group has filed
// its final manuscript.
func (s *manuscriptService) requireNoSubmission(store repositories.Store, actor *models.User) error {
	exists, err := s.groups.With(store).HasGroupSubmission(actor)
	if err != nil {
		return err
	}
	if exists {
		return models.NewStateError("the final manuscript was already submitted; the reviewed manuscript can no longer change")
	}
	return nil
}

func (s *manuscriptService) Get(ctx context.Context, projectID, actorID uint) (*models.ManuscriptReview, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, err
	}
	review, err := store.Manuscripts().Get(active.LineageID)
	if err != nil {
		return nil, notFound(err, "manuscript review")
	}
	return review, nil
}

func (s *manuscriptService) Upload(ctx context.Context, projectID, actorID uint, upload storage.Upload) (*models.ManuscriptReview, error) {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, projectID, actorID, "upload manuscripts")
	if err != nil {
		return nil, err
	}
	if _, err := store.Manuscripts().Get(active.LineageID); err == nil {
		return nil, models.NewStateError("a manuscript was already uploaded; edit it instead")
	} else if !isNotFound(err) {
		return nil, errors.Wrap(err, "check existing manuscript")
	}

	upload, err = storage.ValidatePDF(upload, s.maxUpload)
	if err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	ref, err := s.files.Save(ctx, upload)
	if err != nil {
		return nil, err
	}

	review := &models.ManuscriptReview{
		LineageID:   active.LineageID,
		SubmittedBy: actor.ID,
		DocumentRef: ref,
		FileName:    upload.Filename,
		Status:      models.ManuscriptPending,
	}
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := tx.Projects().GetActive(active.LineageID, true)
		if err != nil {
			return notFound(err, "active project version")
		}
		if err := s.gates.require(tx, actor, current, models.GateManuscriptReview); err != nil {
			return err
		}
		if err := tx.Manuscripts().Create(review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewStateError("a manuscript was already uploaded; edit it instead")
			}
			return errors.Wrap(err, "create manuscript review")
		}

		events = append(events, event(actor.ID, "Manuscript Submitted",
			fmt.Sprintf("Your manuscript for %q was submitted for grammar review.", current.Title),
			models.SeveritySuccess, review.ID, models.ManuscriptRelatedType))
		reviewers, err := eventsForRole(tx, models.RoleGrammarian, "New Manuscript for Review",
			fmt.Sprintf("%s submitted the manuscript of %q.", actor.FullName(), current.Title),
			models.SeverityInfo, review.ID, models.ManuscriptRelatedType)
		if err != nil {
			return err
		}
		events = append(events, reviewers...)
		return nil
	})
	if err != nil {
		discardFile(ctx, s.files, ref)
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return review, nil
}

// Edit lets any group member replace the manuscript. The review restarts
// from pending with every reviewer field cleared.
func (s *manuscriptService) Edit(ctx context.Context, projectID, actorID uint, upload storage.Upload) (*models.ManuscriptReview, error) {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, projectID, actorID, "edit manuscripts")
	if err != nil {
		return nil, err
	}
	if _, err := store.Manuscripts().Get(active.LineageID); err != nil {
		return nil, notFound(err, "manuscript review")
	}
	if err := s.requireNoSubmission(store, actor); err != nil {
		return nil, err
	}

	upload, err = storage.ValidatePDF(upload, s.maxUpload)
	if err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	ref, err := s.files.Save(ctx, upload)
	if err != nil {
		return nil, err
	}

	var review *models.ManuscriptReview
	var stale []string
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := s.requireNoSubmission(tx, actor); err != nil {
			return err
		}
		review, err = tx.Manuscripts().Get(active.LineageID)
		if err != nil {
			return notFound(err, "manuscript review")
		}
		stale = append(stale, review.DocumentRef)
		if review.ReviewedDocumentRef != nil {
			stale = append(stale, *review.ReviewedDocumentRef)
		}
		review.Reset(ref, upload.Filename)
		if err := tx.Manuscripts().Update(review); err != nil {
			return errors.Wrap(err, "update manuscript review")
		}

		reviewers, err := eventsForRole(tx, models.RoleGrammarian, "Manuscript Resubmitted",
			fmt.Sprintf("%s replaced the manuscript of %q.", actor.FullName(), active.Title),
			models.SeverityInfo, review.ID, models.ManuscriptRelatedType)
		if err != nil {
			return err
		}
		events = append(events, reviewers...)
		return nil
	})
	if err != nil {
		discardFile(ctx, s.files, ref)
		return nil, err
	}

	for _, old := range stale {
		discardFile(ctx, s.files, old)
	}
	s.emitter.Emit(ctx, events...)
	return review, nil
}

// Cancel deletes the review. Only the member who uploaded it may cancel.
func (s *manuscriptService) Cancel(ctx context.Context, projectID, actorID uint) error {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, projectID, actorID, "cancel manuscripts")
	if err != nil {
		return err
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	var stale []string
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := s.requireNoSubmission(tx, actor); err != nil {
			return err
		}
		review, err := tx.Manuscripts().Get(active.LineageID)
		if err != nil {
			return notFound(err, "manuscript review")
		}
		if review.SubmittedBy != actor.ID {
			return models.NewPolicyError("only the group member who uploaded the manuscript may cancel it")
		}
		stale = append(stale, review.DocumentRef)
		if review.ReviewedDocumentRef != nil {
			stale = append(stale, *review.ReviewedDocumentRef)
		}
		return errors.Wrap(tx.Manuscripts().Delete(review.ID), "delete manuscript review")
	})
	if err != nil {
		return err
	}

	for _, old := range stale {
		discardFile(ctx, s.files, old)
	}
	return nil
}

// Review moves the grammar review: start takes a pending manuscript under
// review, approve and reject conclude it.
func (s *manuscriptService) Review(ctx context.Context, projectID, actorID uint, action models.ReviewAction, notes string, reviewed *storage.Upload) (*models.ManuscriptReview, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "review manuscripts", models.RoleGrammarian); err != nil {
		return nil, err
	}
	var verdict models.ManuscriptStatus
	switch action {
	case models.ReviewStart:
	case models.ReviewApprove:
		verdict = models.ManuscriptApproved
	case models.ReviewReject:
		verdict = models.ManuscriptRejected
	default:
		return nil, models.NewValidationError("invalid review action", map[string]string{"action": "must be one of start approve reject"})
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, err
	}

	var reviewedRef string
	if reviewed != nil && verdict != "" {
		upload, err := storage.ValidatePDF(*reviewed, s.maxUpload)
		if err != nil {
			return nil, err
		}
		reviewed = &upload
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	if reviewed != nil && verdict != "" {
		reviewedRef, err = s.files.Save(ctx, *reviewed)
		if err != nil {
			return nil, err
		}
	}

	var review *models.ManuscriptReview
	var stale string
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		review, err = tx.Manuscripts().Get(active.LineageID)
		if err != nil {
			return notFound(err, "manuscript review")
		}

		if action == models.ReviewStart {
			if review.Status != models.ManuscriptPending {
				return models.NewStateError("only a pending manuscript can be taken under review (status is %s)", review.Status)
			}
			review.StartReview(actor.ID)
			events = append(events, event(review.SubmittedBy, "Manuscript Under Review",
				fmt.Sprintf("The grammarian started reviewing the manuscript of %q.", active.Title),
				models.SeverityInfo, review.ID, models.ManuscriptRelatedType))
		} else {
			if review.Status != models.ManuscriptPending && review.Status != models.ManuscriptUnderReview {
				return models.NewStateError("the manuscript review was already concluded (status is %s)", review.Status)
			}
			if review.ReviewedDocumentRef != nil && reviewedRef != "" {
				stale = *review.ReviewedDocumentRef
			}
			review.Conclude(actor.ID, verdict, notes, reviewedRef, s.now())
			title, severity := "Manuscript Approved", models.SeveritySuccess
			if verdict == models.ManuscriptRejected {
				title, severity = "Manuscript Needs Revision", models.SeverityWarning
			}
			events = append(events, event(review.SubmittedBy, title,
				fmt.Sprintf("The grammar review of %q concluded: %s.", active.Title, verdict),
				severity, review.ID, models.ManuscriptRelatedType))
		}
		return errors.Wrap(tx.Manuscripts().Update(review), "update manuscript review")
	})
	if err != nil {
		discardFile(ctx, s.files, reviewedRef)
		return nil, err
	}

	discardFile(ctx, s.files, stale)
	s.emitter.Emit(ctx, events...)
	return review, nil
}

// Queue lists manuscripts awaiting a grammarian.
func (s *manuscriptService) Queue(ctx context.Context, actorID uint) ([]models.ManuscriptReview, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "list the review queue", models.RoleGrammarian); err != nil {
		return nil, err
	}
	reviews, err := store.Manuscripts().ListByStatus(models.ManuscriptPending, models.ManuscriptUnderReview)
	return reviews, errors.Wrap(err, "list manuscript queue")
}
