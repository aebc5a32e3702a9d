package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"capstone-tracker/models"
	"capstone-tracker/repositories"
	"capstone-tracker/storage"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type DefenseService interface {
	Get(ctx context.Context, kind models.DefenseKind, projectID, actorID uint) (*models.Defense, error)
	Submit(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, upload storage.Upload) (*models.Defense, error)
	Edit(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, upload storage.Upload) (*models.Defense, error)
	Unsubmit(ctx context.Context, kind models.DefenseKind, projectID, actorID uint) error
	Schedule(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, at time.Time) (*models.Defense, error)
	Decide(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, decision models.ApprovalStatus, remarks string) (*models.Defense, error)
}

type defenseService struct {
	store     repositories.Store
	files     storage.FileStore
	groups    *GroupPolicy
	gates     *gateService
	emitter   *Emitter
	now       Clock
	maxUpload int64
}

func NewDefenseService(store repositories.Store, files storage.FileStore, groups *GroupPolicy, emitter *Emitter, clock Clock, maxUpload int64) DefenseService {
	if clock == nil {
		clock = systemClock
	}
	if maxUpload <= 0 {
		maxUpload = storage.DefaultMaxUpload
	}
	return &defenseService{
		store:     store,
		files:     files,
		groups:    groups,
		gates:     &gateService{store: store, groups: groups},
		emitter:   emitter,
		now:       clock,
		maxUpload: maxUpload,
	}
}

func defenseLabel(kind models.DefenseKind) string {
	if kind == models.DefenseFinal {
		return "Final Defense"
	}
	return "Title Defense"
}

func checkKind(kind models.DefenseKind) error {
	if !kind.Valid() {
		return models.NewValidationError("invalid defense kind", map[string]string{"kind": "must be one of title final"})
	}
	return nil
}

// open resolves the actor and active version and checks the defense gate.
// For staff the gate is judged against the submitting student.
func (s *defenseService) open(store repositories.Store, kind models.DefenseKind, projectID, actorID uint) (*models.User, *models.Project, error) {
	if err := checkKind(kind); err != nil {
		return nil, nil, err
	}
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, nil, err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, nil, err
	}
	student, err := subjectStudent(store, actor, active)
	if err != nil {
		return nil, nil, err
	}
	if err := s.gates.require(store, student, active, kind.Gate()); err != nil {
		return nil, nil, err
	}
	return actor, active, nil
}

func (s *defenseService) Get(ctx context.Context, kind models.DefenseKind, projectID, actorID uint) (*models.Defense, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, err
	}
	defense, err := store.Defenses().Get(kind, active.LineageID)
	if err != nil {
		return nil, notFound(err, strings.ToLower(defenseLabel(kind)))
	}
	return defense, nil
}

func (s *defenseService) Submit(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, upload storage.Upload) (*models.Defense, error) {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, kind, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "submit defense documents", models.RoleStudent); err != nil {
		return nil, err
	}
	if _, err := store.Defenses().Get(kind, active.LineageID); err == nil {
		return nil, models.NewStateError("a %s document was already submitted; edit or unsubmit it instead", strings.ToLower(defenseLabel(kind)))
	} else if !isNotFound(err) {
		return nil, errors.Wrap(err, "check existing defense")
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

	defense := &models.Defense{
		Kind:        kind,
		LineageID:   active.LineageID,
		SubmittedBy: actor.ID,
		DocumentRef: ref,
		FileName:    upload.Filename,
		Status:      models.ApprovalPending,
	}
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := tx.Projects().GetActive(active.LineageID, true)
		if err != nil {
			return notFound(err, "active project version")
		}
		if err := s.gates.require(tx, actor, current, kind.Gate()); err != nil {
			return err
		}
		if _, err := tx.Defenses().Get(kind, active.LineageID); err == nil {
			return models.NewStateError("a %s document was already submitted", strings.ToLower(defenseLabel(kind)))
		} else if !isNotFound(err) {
			return errors.Wrap(err, "check existing defense")
		}
		if err := tx.Defenses().Create(defense); err != nil {
			return errors.Wrap(err, "create defense")
		}

		events = append(events, event(actor.ID, defenseLabel(kind)+" Submitted",
			fmt.Sprintf("Your %s document for %q was submitted.", strings.ToLower(defenseLabel(kind)), current.Title),
			models.SeveritySuccess, defense.ID, kind.RelatedType()))
		if current.HasAdviser() {
			events = append(events, event(*current.AdviserID, defenseLabel(kind)+" Submitted",
				fmt.Sprintf("%s submitted the %s document for %q.", actor.FullName(), strings.ToLower(defenseLabel(kind)), current.Title),
				models.SeverityInfo, defense.ID, kind.RelatedType()))
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return defense, nil
}

// Edit replaces the document while the defense is scheduled in the future.
// The old file is removed only after the new row is committed.
func (s *defenseService) Edit(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, upload storage.Upload) (*models.Defense, error) {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, kind, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "edit defense documents", models.RoleStudent); err != nil {
		return nil, err
	}
	existing, err := store.Defenses().Get(kind, active.LineageID)
	if err != nil {
		return nil, notFound(err, strings.ToLower(defenseLabel(kind)))
	}
	if err := s.checkEditable(existing); err != nil {
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

	var defense *models.Defense
	var oldRef string
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		defense, err = tx.Defenses().Get(kind, active.LineageID)
		if err != nil {
			return notFound(err, strings.ToLower(defenseLabel(kind)))
		}
		if err := s.checkEditable(defense); err != nil {
			return err
		}
		oldRef = defense.DocumentRef
		defense.Replace(ref, upload.Filename)
		if err := tx.Defenses().Update(defense); err != nil {
			return errors.Wrap(err, "update defense")
		}
		if active.HasAdviser() {
			events = append(events, event(*active.AdviserID, defenseLabel(kind)+" Updated",
				fmt.Sprintf("%s replaced the %s document for %q.", actor.FullName(), strings.ToLower(defenseLabel(kind)), active.Title),
				models.SeverityInfo, defense.ID, kind.RelatedType()))
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}

	s.discard(ctx, oldRef)
	s.emitter.Emit(ctx, events...)
	return defense, nil
}

func (s *defenseService) checkEditable(defense *models.Defense) error {
	if defense.IsApproved() {
		return models.NewStateError("an approved defense can no longer be edited")
	}
	if defense.ScheduledDate == nil {
		return models.NewStateError("the defense can be edited only after it is scheduled; unsubmit it instead")
	}
	if !defense.CanEdit(s.now()) {
		return models.NewStateError("the edit window closed at the scheduled defense date %s", defense.ScheduledDate.Format(time.RFC3339))
	}
	return nil
}

// Unsubmit deletes a defense that is neither scheduled nor approved.
func (s *defenseService) Unsubmit(ctx context.Context, kind models.DefenseKind, projectID, actorID uint) error {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, kind, projectID, actorID)
	if err != nil {
		return err
	}
	if err := requireRole(actor, "unsubmit defense documents", models.RoleStudent); err != nil {
		return err
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	var ref string
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		defense, err := tx.Defenses().Get(kind, active.LineageID)
		if err != nil {
			return notFound(err, strings.ToLower(defenseLabel(kind)))
		}
		if !defense.CanUnsubmit() {
			return models.NewStateError("a scheduled or approved defense cannot be unsubmitted")
		}
		ref = defense.DocumentRef
		return errors.Wrap(tx.Defenses().Delete(defense.ID), "delete defense")
	})
	if err != nil {
		return err
	}

	s.discard(ctx, ref)
	return nil
}

// Schedule sets or moves the defense date. Only the assigned adviser may do so.
func (s *defenseService) Schedule(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, at time.Time) (*models.Defense, error) {
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, kind, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdviser(actor, active); err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, models.NewValidationError("scheduled date must be in the future", map[string]string{"scheduled_date": "must be in the future"})
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	var defense *models.Defense
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		defense, err = tx.Defenses().Get(kind, active.LineageID)
		if err != nil {
			return notFound(err, strings.ToLower(defenseLabel(kind)))
		}
		switch defense.State().(type) {
		case models.DefenseApproved, models.DefenseRejected:
			return models.NewStateError("the defense was already decided")
		}

		title, severity := defenseLabel(kind)+" Scheduled", models.SeverityInfo
		if defense.ScheduledDate != nil {
			title, severity = defenseLabel(kind)+" Rescheduled", models.SeverityWarning
		}
		defense.Schedule(at)
		if err := tx.Defenses().Update(defense); err != nil {
			return errors.Wrap(err, "schedule defense")
		}

		events = append(events, event(defense.SubmittedBy, title,
			fmt.Sprintf("Your %s for %q is scheduled on %s.", strings.ToLower(defenseLabel(kind)), active.Title, at.Format("January 2, 2006 3:04 PM")),
			severity, defense.ID, kind.RelatedType()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return defense, nil
}

// Decide records the adviser's verdict on a pending or scheduled defense.
func (s *defenseService) Decide(ctx context.Context, kind models.DefenseKind, projectID, actorID uint, decision models.ApprovalStatus, remarks string) (*models.Defense, error) {
	if decision != models.ApprovalApproved && decision != models.ApprovalRejected {
		return nil, models.NewValidationError("invalid decision", map[string]string{"decision": "must be one of approved rejected"})
	}
	store := s.store.WithContext(ctx)
	actor, active, err := s.open(store, kind, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdviser(actor, active); err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(lineageKey(active.LineageID))
	defer unlock()

	var defense *models.Defense
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		defense, err = tx.Defenses().Get(kind, active.LineageID)
		if err != nil {
			return notFound(err, strings.ToLower(defenseLabel(kind)))
		}
		switch defense.State().(type) {
		case models.DefenseApproved, models.DefenseRejected:
			return models.NewStateError("the defense was already decided")
		}
		defense.Decide(decision, remarks)
		if err := tx.Defenses().Update(defense); err != nil {
			return errors.Wrap(err, "decide defense")
		}

		severity, verb, title := models.SeveritySuccess, "approved", " Approved"
		if decision == models.ApprovalRejected {
			severity, verb, title = models.SeverityError, "rejected", " Rejected"
		}
		events = append(events, event(defense.SubmittedBy, defenseLabel(kind)+title,
			fmt.Sprintf("Your %s for %q was %s.", strings.ToLower(defenseLabel(kind)), active.Title, verb),
			severity, defense.ID, kind.RelatedType()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return defense, nil
}

// discard removes a stored file outside any transaction. Failures leave an
// orphan file behind and are only logged.
func (s *defenseService) discard(ctx context.Context, ref string) {
	discardFile(ctx, s.files, ref)
}

func discardFile(ctx context.Context, files storage.FileStore, ref string) {
	if ref == "" {
		return
	}
	if err := files.Delete(ctx, ref); err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("failed to delete stored file")
	}
}
