package services

import (
	"context"
	"fmt"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
)

type ApprovalService interface {
	RecordDecision(ctx context.Context, projectID, actorID uint, stage models.ApprovalStage, decision models.ApprovalStatus, comment string) (*models.Approval, error)
	IsFullyApproved(ctx context.Context, projectID uint) (bool, error)
}

type approvalService struct {
	store   repositories.Store
	groups  *GroupPolicy
	emitter *Emitter
	now     Clock
}

func NewApprovalService(store repositories.Store, groups *GroupPolicy, emitter *Emitter, clock Clock) ApprovalService {
	if clock == nil {
		clock = systemClock
	}
	return &approvalService{store: store, groups: groups, emitter: emitter, now: clock}
}

func stageRoles(stage models.ApprovalStage) []models.UserRole {
	switch stage {
	case models.StageDean:
		return []models.UserRole{models.RoleDean}
	default:
		return []models.UserRole{models.RoleFaculty}
	}
}

// RecordDecision records one stage of the ladder on the active version.
// Stages are decided in order and at most once per version. A rejection
// sends every later stage back to pending.
func (s *approvalService) RecordDecision(ctx context.Context, projectID, actorID uint, stage models.ApprovalStage, decision models.ApprovalStatus, comment string) (*models.Approval, error) {
	if !stage.Valid() {
		return nil, models.NewValidationError("invalid approval stage", map[string]string{"stage": "must be one of faculty adviser dean"})
	}
	if decision != models.ApprovalApproved && decision != models.ApprovalRejected {
		return nil, models.NewValidationError("invalid decision", map[string]string{"decision": "must be one of approved rejected"})
	}

	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, fmt.Sprintf("decide the %s stage", stage.Label()), stageRoles(stage)...); err != nil {
		return nil, err
	}
	target, err := loadProject(store, s.groups, actor, projectID)
	if err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(lineageKey(target.LineageID))
	defer unlock()

	var approval *models.Approval
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		active, err := tx.Projects().GetActive(target.LineageID, true)
		if err != nil {
			return notFound(err, "active project version")
		}
		if active.ID != target.ID {
			return models.NewStateError("decisions apply to the active version %d only", active.Version)
		}
		if stage == models.StageFaculty {
			if err := requireAdviser(actor, active); err != nil {
				return err
			}
		}

		approval = active.Approval
		if approval == nil {
			approval = models.NewApproval()
			approval.ProjectID = active.ID
		}
		if prev := approval.Unapproved(stage); prev != "" {
			return models.NewSequenceError(stage, prev,
				fmt.Sprintf("%s approval is required before the %s decision", prev.Label(), stage.Label()))
		}
		if approval.DecidedAt(stage) != nil {
			return models.NewStateError("the %s stage was already decided on version %d; a new version is required for another decision",
				stage.Label(), active.Version)
		}

		approval.Record(stage, decision, comment, s.now())
		if decision == models.ApprovalRejected {
			approval.ResetAfter(stage)
		}
		if err := tx.Projects().SaveApproval(approval); err != nil {
			return errors.Wrap(err, "save approval")
		}

		events, err = decisionEvents(tx, active, stage, decision, approval)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return approval, nil
}

func decisionEvents(tx repositories.Store, project *models.Project, stage models.ApprovalStage, decision models.ApprovalStatus, approval *models.Approval) ([]models.Notification, error) {
	var events []models.Notification
	if decision == models.ApprovalRejected {
		events = append(events, event(project.SubmittedBy, "Research Rejected",
			fmt.Sprintf("The %s rejected %q. Review the comments and submit a new version.", stage.Label(), project.Title),
			models.SeverityError, project.ID, models.ProjectRelatedType))
		return events, nil
	}

	events = append(events, event(project.SubmittedBy, "Research Approved",
		fmt.Sprintf("The %s approved %q.", stage.Label(), project.Title),
		models.SeveritySuccess, project.ID, models.ProjectRelatedType))

	switch {
	case approval.IsFullyApproved():
		events = append(events, event(project.SubmittedBy, "Working Title Approved",
			fmt.Sprintf("%q is fully approved. You may now submit your title defense.", project.Title),
			models.SeveritySuccess, project.ID, models.ProjectRelatedType))
	case stage == models.StageAdviser:
		deans, err := eventsForRole(tx, models.RoleDean, "Research Awaiting Dean Approval",
			fmt.Sprintf("%q was approved by the %s and awaits your decision.", project.Title, stage.Label()),
			models.SeverityInfo, project.ID, models.ProjectRelatedType)
		if err != nil {
			return nil, err
		}
		events = append(events, deans...)
	}
	return events, nil
}

func (s *approvalService) IsFullyApproved(ctx context.Context, projectID uint) (bool, error) {
	store := s.store.WithContext(ctx)
	project, err := store.Projects().GetByID(projectID)
	if err != nil {
		return false, notFound(err, "project")
	}
	active, err := store.Projects().GetActive(project.LineageID, false)
	if err != nil {
		return false, notFound(err, "active project version")
	}
	return active.IsFullyApproved(), nil
}
